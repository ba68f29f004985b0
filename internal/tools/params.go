package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

// ErrInvalidParameter - параметр отсутствует или имеет неверный тип
var ErrInvalidParameter = errors.New("invalid parameter")

func invalidParam(name string) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, name)
}

// floatParam извлекает обязательный числовой параметр; строки с разделителями тысяч допускаются
func floatParam(params map[string]interface{}, name string) (float64, error) {
	switch v := params[name].(type) {
	case float64:
		return v, nil
	case string:
		f, err := utils.ParseAmount(v)
		if err != nil {
			return 0, invalidParam(name)
		}
		return f, nil
	default:
		return 0, invalidParam(name)
	}
}

// optionalFloat возвращает def, если параметр не передан
func optionalFloat(params map[string]interface{}, name string, def float64) (float64, error) {
	if v, ok := params[name]; !ok || v == nil {
		return def, nil
	}
	return floatParam(params, name)
}

func intParam(params map[string]interface{}, name string) (int, error) {
	f, ok := params[name].(float64)
	if !ok {
		return 0, invalidParam(name)
	}
	return int(f), nil
}

func optionalInt(params map[string]interface{}, name string, def int) (int, error) {
	if v, ok := params[name]; !ok || v == nil {
		return def, nil
	}
	return intParam(params, name)
}

func optionalString(params map[string]interface{}, name, def string) (string, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidParam(name)
	}
	return s, nil
}

func optionalBool(params map[string]interface{}, name string, def bool) (bool, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, invalidParam(name)
	}
	return b, nil
}

// optionalBoolPtr возвращает nil, если параметр не передан
func optionalBoolPtr(params map[string]interface{}, name string) (*bool, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, invalidParam(name)
	}
	return &b, nil
}

// floatSlice извлекает необязательный массив чисел
func floatSlice(params map[string]interface{}, name string) ([]float64, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, invalidParam(name)
	}
	out := make([]float64, len(raw))
	for i, item := range raw {
		f, ok := item.(float64)
		if !ok {
			return nil, invalidParam(fmt.Sprintf("%s[%d]", name, i))
		}
		out[i] = f
	}
	return out, nil
}

// decodeParam перекладывает вложенный объект параметров в типизированную структуру
func decodeParam(params map[string]interface{}, name string, dst interface{}) (bool, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return false, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return false, invalidParam(name)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrInvalidParameter, name, err)
	}
	return true, nil
}
