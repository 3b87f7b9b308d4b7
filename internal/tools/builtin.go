package tools

import (
	"github.com/soochol/workbench/internal/workbench"
)

const (
	SourceFileSystem = "filesystem"
	SourceURL        = "url"
	SourceHarvester  = "harvester"
)

func required(field string) Rule {
	return Rule{
		Field:   field,
		Expr:    field + ` != nil && ` + field + ` != ""`,
		Message: field + " is required",
	}
}

// BuiltinTools returns the descriptors of the tools shipped with the workbench.
func BuiltinTools() []Descriptor {
	return []Descriptor{
		{
			Tool:         workbench.ToolTransform,
			Title:        "TripleGeo",
			Cloneable:    true,
			ResourceType: workbench.ResourcePOIData,
			MaxInputs:    0,
			DataSources:  []string{SourceFileSystem, SourceURL, SourceHarvester},
			Versions:     []string{"1.7", "1.8"},
			Defaults: workbench.Configuration{
				"profile":     "",
				"inputFormat": "CSV",
				"encoding":    "UTF-8",
				"sourceCRS":   "EPSG:4326",
				"targetCRS":   "EPSG:4326",
			},
			Rules: []Rule{
				required("profile"),
				{
					Field:   "inputFormat",
					Expr:    `inputFormat in ["CSV", "SHAPEFILE", "GEOJSON", "GPX", "OSM_XML", "OSM_PBF"]`,
					Message: "unsupported input format",
				},
				required("sourceCRS"),
				required("targetCRS"),
			},
		},
		{
			Tool:         workbench.ToolInterlink,
			Title:        "LIMES",
			Cloneable:    true,
			ResourceType: workbench.ResourceLinkedData,
			Parts:        []string{"accepted", "review"},
			MaxInputs:    2,
			Versions:     []string{"1.5"},
			Defaults: workbench.Configuration{
				"metric":              "trigrams(a.name, b.name)",
				"acceptanceThreshold": 0.9,
				"reviewThreshold":     0.7,
			},
			Rules: []Rule{
				required("metric"),
				{
					Field:   "acceptanceThreshold",
					Expr:    `acceptanceThreshold >= 0 && acceptanceThreshold <= 1`,
					Message: "acceptance threshold must be between 0 and 1",
				},
				{
					Field:   "reviewThreshold",
					Expr:    `reviewThreshold >= 0 && reviewThreshold <= acceptanceThreshold`,
					Message: "review threshold must be between 0 and the acceptance threshold",
				},
			},
		},
		{
			Tool:         workbench.ToolFuse,
			Title:        "FAGI",
			Cloneable:    true,
			ResourceType: workbench.ResourcePOIData,
			Parts:        []string{"fused", "remaining", "review"},
			MaxInputs:    3,
			Versions:     []string{"3.2"},
			Defaults: workbench.Configuration{
				"rulesSpec": "",
				"mode":      "AA_MODE",
			},
			Rules: []Rule{
				required("rulesSpec"),
				{
					Field:   "mode",
					Expr:    `mode in ["AA_MODE", "AB_MODE", "BB_MODE", "A_MODE", "B_MODE"]`,
					Message: "unsupported fusion mode",
				},
			},
		},
		{
			Tool:         workbench.ToolEnrich,
			Title:        "DEER",
			Cloneable:    true,
			ResourceType: workbench.ResourcePOIData,
			MaxInputs:    1,
			Versions:     []string{"2.2"},
			Defaults: workbench.Configuration{
				"profile": "",
			},
			Rules: []Rule{required("profile")},
		},
		{
			Tool:      workbench.ToolRegister,
			Title:     "Catalog Registration",
			Cloneable: false,
			MaxInputs: 1,
			Defaults: workbench.Configuration{
				"name":        "",
				"description": "",
			},
			Rules: []Rule{required("name")},
		},
		{
			Tool:         workbench.ToolReverseTransform,
			Title:        "Reverse TripleGeo",
			Cloneable:    true,
			ResourceType: workbench.ResourceFile,
			MaxInputs:    1,
			Versions:     []string{"1.7", "1.8"},
			Defaults: workbench.Configuration{
				"profile":      "",
				"outputFormat": "CSV",
			},
			Rules: []Rule{
				required("profile"),
				{
					Field:   "outputFormat",
					Expr:    `outputFormat in ["CSV", "SHAPEFILE", "GEOJSON"]`,
					Message: "unsupported output format",
				},
			},
		},
	}
}

// BuiltinSources returns the data-source kinds shipped with the workbench.
func BuiltinSources() []SourceDescriptor {
	return []SourceDescriptor{
		{
			Source:   SourceFileSystem,
			Title:    "File system",
			Defaults: workbench.Configuration{"path": ""},
			Rules:    []Rule{required("path")},
		},
		{
			Source:   SourceURL,
			Title:    "External URL",
			Defaults: workbench.Configuration{"url": ""},
			Rules: []Rule{{
				Field:   "url",
				Expr:    `url != nil && (url startsWith "http://" || url startsWith "https://")`,
				Message: "an http(s) URL is required",
			}},
		},
		{
			Source:   SourceHarvester,
			Title:    "OSM harvester",
			Defaults: workbench.Configuration{"name": "", "boundingBox": ""},
			Rules:    []Rule{required("name"), required("boundingBox")},
		},
	}
}

// NewBuiltinRegistry returns a registry with all builtin tools and data sources.
func NewBuiltinRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, d := range BuiltinTools() {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	for _, d := range BuiltinSources() {
		if err := r.RegisterSource(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}
