package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

var durationType = reflect.TypeOf(time.Duration(0))

// ErrConfiguration marks every error produced while loading configuration.
// Callers treat it as fatal at cold start.
var ErrConfiguration = errors.New("configuration error")

// Validator interface allows config structs to implement custom validation logic.
// If a config struct implements this interface, validation will be automatically
// called after loading configuration from files and environment variables.
type Validator interface {
	Validate() error
}

// setFromString assigns raw to field according to the field's kind.
func setFromString(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to duration: %v", raw, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to convert %s to int: %v", raw, err)
		}
		field.SetInt(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to convert %s to float: %v", raw, err)
		}
		field.SetFloat(v)
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to bool: %v", raw, err)
		}
		field.SetBool(v)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		parts := strings.Split(raw, ",")
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			slice.Index(i).SetString(strings.TrimSpace(p))
		}
		field.Set(slice)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

func fieldKey(typeOfT reflect.Type, f reflect.StructField) string {
	return typeOfT.PkgPath() + "." + typeOfT.Name() + "." + f.Name
}

// applyEnv walks val and copies environment values into fields tagged with env.
// It records which fields were set so defaults never override them.
func applyEnv(val reflect.Value, setFields map[string]bool) error {
	typeOfT := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)
		if !fieldType.IsExported() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := applyEnv(field, setFields); err != nil {
				return err
			}
			continue
		}

		tag := fieldType.Tag.Get("env")
		if tag == "" {
			continue
		}
		envVal, ok := os.LookupEnv(tag)
		if !ok || envVal == "" {
			continue
		}
		if err := setFromString(field, envVal); err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
		setFields[fieldKey(typeOfT, fieldType)] = true
	}
	return nil
}

// applyDefaults fills zero fields from their default tag and reports missing required fields.
func applyDefaults(val reflect.Value, setFields map[string]bool) error {
	var result error
	typeOfT := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)
		if !fieldType.IsExported() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := applyDefaults(field, setFields); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}

		defaultTag, hasDefault := fieldType.Tag.Lookup("default")
		required := isTrue(fieldType.Tag.Get("required")) && !hasDefault

		if !field.IsZero() {
			continue
		}
		if required {
			result = multierror.Append(result, fmt.Errorf("required field env:%s / yaml:%s is missing",
				fieldType.Tag.Get("env"), fieldType.Tag.Get("yaml")))
			continue
		}
		if hasDefault && defaultTag != "" && !setFields[fieldKey(typeOfT, fieldType)] {
			if err := setFromString(field, defaultTag); err != nil {
				result = multierror.Append(result, fmt.Errorf("default for %s: %w", fieldType.Name, err))
			}
		}
	}
	return result
}

func isTrue(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1"
}

// GetConfigFromEnvVars loads configuration from environment variables only.
// It processes struct tags: env, default, required.
//
//	var cfg MyConfig
//	err := GetConfigFromEnvVars(&cfg)
func GetConfigFromEnvVars[T any](dest *T) error {
	if err := load(dest); err != nil {
		var zero T
		*dest = zero
		return err
	}
	return nil
}

func load[T any](dest *T) error {
	val := reflect.ValueOf(dest).Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("%w: destination must point to a struct, got %s", ErrConfiguration, val.Kind())
	}

	setFields := make(map[string]bool)
	if err := applyEnv(val, setFields); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := applyDefaults(val, setFields); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if validator, ok := any(*dest).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("%w: validation failed: %v", ErrConfiguration, err)
		}
	}
	return nil
}

// GetConfig loads configuration from a YAML file first, then overlays environment variables.
// If filepath is empty, only environment variables are used.
// If allowFileErrors is true, file read/parse errors fall back to env vars only.
func GetConfig[T any](dest *T, filepath string, allowFileErrors bool) error {
	if filepath == "" {
		return GetConfigFromEnvVars(dest)
	}
	data, err := os.ReadFile(filepath)
	if err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("%w: failed to read file: %v", ErrConfiguration, err)
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("%w: failed to unmarshal YAML: %v", ErrConfiguration, err)
	}
	return load(dest)
}
