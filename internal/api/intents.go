package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soochol/workbench/internal/designer"
)

var errUnknownIntent = errors.New("unknown intent type")

type intentDecoder func(raw json.RawMessage) (designer.Intent, error)

func decodeAs[T designer.Intent](raw json.RawMessage) (designer.Intent, error) {
	var in T
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	return in, nil
}

// intentDecoders lists the intents a client may post directly. Validation
// results, undo and redo have their own endpoints.
var intentDecoders = map[string]intentDecoder{
	designer.AddStep{}.Type():               decodeAs[designer.AddStep],
	designer.CloneStep{}.Type():             decodeAs[designer.CloneStep],
	designer.RemoveStep{}.Type():            decodeAs[designer.RemoveStep],
	designer.MoveStep{}.Type():              decodeAs[designer.MoveStep],
	designer.MoveStepInput{}.Type():         decodeAs[designer.MoveStepInput],
	designer.SetStepProperties{}.Type():     decodeAs[designer.SetStepProperties],
	designer.SetProcessProperties{}.Type():  decodeAs[designer.SetProcessProperties],
	designer.AddResourceToBag{}.Type():      decodeAs[designer.AddResourceToBag],
	designer.RemoveResourceFromBag{}.Type(): decodeAs[designer.RemoveResourceFromBag],
	designer.FilterResource{}.Type():        decodeAs[designer.FilterResource],
	designer.AddStepInput{}.Type():          decodeAs[designer.AddStepInput],
	designer.RemoveStepInput{}.Type():       decodeAs[designer.RemoveStepInput],
	designer.SelectOutputPart{}.Type():      decodeAs[designer.SelectOutputPart],
	designer.AddStepDataSource{}.Type():     decodeAs[designer.AddStepDataSource],
	designer.RemoveStepDataSource{}.Type():  decodeAs[designer.RemoveStepDataSource],
	designer.ConfigureBegin{}.Type():        decodeAs[designer.ConfigureBegin],
	designer.ConfigureUpdate{}.Type():       decodeAs[designer.ConfigureUpdate],
	designer.ConfigureEnd{}.Type():          decodeAs[designer.ConfigureEnd],
	designer.ConfigureCancel{}.Type():       decodeAs[designer.ConfigureCancel],
	designer.SetConfiguration{}.Type():      decodeAs[designer.SetConfiguration],
	designer.SelectProcess{}.Type():         decodeAs[designer.SelectProcess],
	designer.SelectStep{}.Type():            decodeAs[designer.SelectStep],
	designer.SelectInput{}.Type():           decodeAs[designer.SelectInput],
	designer.SelectStepDataSource{}.Type():  decodeAs[designer.SelectStepDataSource],
	designer.SelectResource{}.Type():        decodeAs[designer.SelectResource],
	designer.ClearSelection{}.Type():        decodeAs[designer.ClearSelection],
	designer.Reset{}.Type():                 decodeAs[designer.Reset],
	designer.Load{}.Type():                  decodeAs[designer.Load],
}

// decodeIntent reads an intent envelope of the form {"type": "add_step", ...}.
// The remaining fields are matched against the intent's fields by name.
func decodeIntent(raw []byte) (designer.Intent, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("invalid intent: %w", err)
	}
	dec, ok := intentDecoders[envelope.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownIntent, envelope.Type)
	}
	in, err := dec(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s intent: %w", envelope.Type, err)
	}
	return in, nil
}
