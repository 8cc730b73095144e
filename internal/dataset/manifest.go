package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"circadian/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed manifest.schema.json
var manifestSchemaJSON string

// Resource 将 (metric, cohort) 映射到资源名。
type Resource struct {
	Metric Metric
	Cohort Cohort
	Name   string
}

// Manifest names the six resources. The zero value is not usable; start from DefaultManifest.
type Manifest struct {
	names [2][cohortCount]string
}

// DefaultManifest 返回默认的六个 CSV 文件名。
func DefaultManifest() Manifest {
	return Manifest{names: [2][cohortCount]string{
		{"AvgFemTempEst.csv", "AvgFemTempNonEst.csv", "AvgMaleTemp.csv"},
		{"AvgFemActEst.csv", "AvgFemActNonEst.csv", "AvgMaleAct.csv"},
	}}
}

func (m Manifest) isZero() bool { return m == Manifest{} }

func (m Manifest) Name(metric Metric, cohort Cohort) string {
	return m.names[metric][cohort]
}

// Resources lists the six resources: temperature first, each metric in cohort order.
func (m Manifest) Resources() []Resource {
	out := make([]Resource, 0, 2*int(cohortCount))
	for _, metric := range Metrics() {
		for _, cohort := range Cohorts() {
			out = append(out, Resource{Metric: metric, Cohort: cohort, Name: m.names[metric][cohort]})
		}
	}
	return out
}

type manifestFile struct {
	Resources map[string]map[string]string `yaml:"resources"`
}

var (
	manifestSchemaOnce sync.Once
	manifestSchema     *jsonschema.Schema
	manifestSchemaErr  error
)

func compiledManifestSchema() (*jsonschema.Schema, error) {
	manifestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("manifest.schema.json", strings.NewReader(manifestSchemaJSON)); err != nil {
			manifestSchemaErr = err
			return
		}
		manifestSchema, manifestSchemaErr = compiler.Compile("manifest.schema.json")
	})
	return manifestSchema, manifestSchemaErr
}

// LoadManifest 读取并校验 YAML manifest 文件。
func LoadManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest failed: %w", err)
	}
	return ParseManifest(raw)
}

// ParseManifest validates raw YAML against the manifest schema before decoding it.
func ParseManifest(raw []byte) (Manifest, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest failed: %w", err)
	}
	// yaml 解码结果转成 JSON 值再交给 schema 校验
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return Manifest{}, fmt.Errorf("parse manifest failed: %w", err)
	}
	var generic any
	if err := json.Unmarshal(asJSON, &generic); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest failed: %w", err)
	}
	schema, err := compiledManifestSchema()
	if err != nil {
		return Manifest{}, fmt.Errorf("compile manifest schema: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest: %w", err)
	}

	var file manifestFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest failed: %w", err)
	}
	m := Manifest{}
	for _, metric := range Metrics() {
		for _, cohort := range Cohorts() {
			m.names[metric][cohort] = strings.TrimSpace(file.Resources[metric.String()][cohort.Key()])
		}
	}
	return m, nil
}

// WatchManifest logs manifest edits. Loaded datasets are never swapped at
// runtime, so the callback only gets a chance to report that a restart is needed.
func WatchManifest(path string, onChange func(fsnotify.Event)) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("manifest watch requires path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read manifest for watch failed: %w", err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if _, err := LoadManifest(path); err != nil {
			logger.Warnf("manifest %s changed (%s) but is invalid: %v", path, evt.Op, err)
		} else {
			logger.Warnf("manifest %s changed (%s); restart to load the new resources", path, evt.Op)
		}
		if onChange != nil {
			onChange(evt)
		}
	})
	v.WatchConfig()
	return nil
}
