package chart

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed scene.schema.json
var sceneSchemaJSON string

var (
	sceneSchemaOnce sync.Once
	sceneSchema     *jsonschema.Schema
	sceneSchemaErr  error
)

func compiledSceneSchema() (*jsonschema.Schema, error) {
	sceneSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("scene.schema.json", strings.NewReader(sceneSchemaJSON)); err != nil {
			sceneSchemaErr = err
			return
		}
		sceneSchema, sceneSchemaErr = compiler.Compile("scene.schema.json")
	})
	return sceneSchema, sceneSchemaErr
}

// ValidateSceneJSON checks an encoded scene against the published scene schema.
func ValidateSceneJSON(raw []byte) error {
	schema, err := compiledSceneSchema()
	if err != nil {
		return fmt.Errorf("compile scene schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode scene json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("scene json does not match schema: %w", err)
	}
	return nil
}

// EncodeJSON 以稳定的字段与属性顺序输出场景。
func EncodeJSON(scene *Scene) ([]byte, error) {
	if scene == nil {
		return nil, fmt.Errorf("empty scene")
	}
	return json.Marshal(scene)
}
