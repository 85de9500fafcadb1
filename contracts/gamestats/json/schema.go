package json

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/xerrors"
)

const gameDefinition = `{
	"type": "object",
	"properties": {
		"score": {"type": "integer", "minimum": 0, "maximum": 4294967295},
		"won": {"type": "boolean"}
	},
	"required": ["score", "won"],
	"additionalProperties": false
}`

var (
	gameSchema = jsonschema.MustCompileString("game.json", gameDefinition)

	operationSchema = jsonschema.MustCompileString("operation.json", `{
	"type": "object",
	"properties": {
		"UpdateStats": `+gameDefinition+`
	},
	"required": ["UpdateStats"],
	"additionalProperties": false
}`)

	messageSchema = jsonschema.MustCompileString("message.json", `{
	"type": "object",
	"properties": {
		"NotifyGameCompleted": `+gameDefinition+`
	},
	"required": ["NotifyGameCompleted"],
	"additionalProperties": false
}`)

	querySchema = jsonschema.MustCompileString("query.json", `{
	"type": "object",
	"properties": {
		"GetPlayerStats": {"type": "object", "maxProperties": 0}
	},
	"required": ["GetPlayerStats"],
	"additionalProperties": false
}`)
)

func validate(schema *jsonschema.Schema, data []byte) error {
	v, err := decodeAny(data)
	if err != nil {
		return err
	}

	err = schema.Validate(v)
	if err != nil {
		return xerrors.Errorf("invalid payload: %v", err)
	}

	return nil
}
