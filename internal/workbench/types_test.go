package workbench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationClone(t *testing.T) {
	cfg := Configuration{
		"version": "1.8",
		"nested":  map[string]any{"crs": "EPSG:4326"},
		"list":    []any{"a", "b"},
	}
	out := cfg.Clone()
	require.Equal(t, cfg, out)

	out["nested"].(map[string]any)["crs"] = "EPSG:2100"
	out["list"].([]any)[0] = "z"
	assert.Equal(t, "EPSG:4326", cfg["nested"].(map[string]any)["crs"])
	assert.Equal(t, "a", cfg["list"].([]any)[0])
	assert.Equal(t, "1.8", out.Version())

	assert.Nil(t, Configuration(nil).Clone())
	assert.Equal(t, "", Configuration{"version": 2}.Version())
}

func TestStepClone(t *testing.T) {
	part := "accepted"
	out := ResourceKey(3)
	s := Step{
		Key:           1,
		Input:         []StepInput{{InputKey: 2, PartKey: &part}},
		DataSources:   []DataSource{{Key: 0, Source: "url", Configuration: Configuration{"url": "x"}}},
		OutputKey:     &out,
		Configuration: Configuration{"profile": "osm"},
		Errors:        Errors{"profile": "bad"},
	}
	c := s.Clone()
	require.Equal(t, s, c)

	*c.Input[0].PartKey = "review"
	*c.OutputKey = 9
	c.DataSources[0].Configuration["url"] = "y"
	c.Errors["profile"] = "ok"
	assert.Equal(t, "accepted", *s.Input[0].PartKey)
	assert.Equal(t, ResourceKey(3), *s.OutputKey)
	assert.Equal(t, "x", s.DataSources[0].Configuration["url"])
	assert.Equal(t, "bad", s.Errors["profile"])

	assert.True(t, s.HasInput(2))
	assert.False(t, s.HasInput(3))
}

func TestCounters(t *testing.T) {
	var c Counters
	assert.Equal(t, StepKey(1), c.NextStepKey())
	assert.Equal(t, StepKey(2), c.NextStepKey())
	assert.Equal(t, ResourceKey(1), c.NextResourceKey())

	c.Reset()
	assert.Equal(t, Counters{Step: 0, Resource: 1}, c)
	assert.Equal(t, StepKey(1), c.NextStepKey())
	assert.Equal(t, ResourceKey(2), c.NextResourceKey())
}

func TestSameCatalogEntry(t *testing.T) {
	a := Resource{InputType: InputCatalog, ID: 4, Version: 1}
	b := Resource{InputType: InputCatalog, ID: 4, Version: 1, Name: "other"}
	c := Resource{InputType: InputCatalog, ID: 4, Version: 2}
	d := Resource{InputType: InputOutput, ID: 4, Version: 1}
	assert.True(t, a.SameCatalogEntry(b))
	assert.False(t, a.SameCatalogEntry(c))
	assert.False(t, a.SameCatalogEntry(d))
}
