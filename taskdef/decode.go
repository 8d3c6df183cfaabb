package taskdef

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// decode reads a task definition into ordered values.  JSON is walked token by token so
// numbers keep their literal form and a repeated key keeps its first position with the
// last value.  Anything else is read as YAML.
func decode(data []byte) (interface{}, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !json.Valid(data) {
		var root interface{}
		if err := yaml.UnmarshalWithOptions(data, &root, yaml.UseOrderedMap()); err != nil {
			return nil, err
		}
		return root, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeJSONValue(dec)
}

func decodeJSONValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			ms := yaml.MapSlice{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}

				key, ok := kt.(string)
				if !ok {
					return nil, errors.Errorf("unexpected object key %v", kt)
				}

				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				ms = setField(ms, key, v)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return ms, nil
		case '[':
			list := []interface{}{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, errors.Errorf("unexpected delimiter %s", t)
	case json.Number:
		return normalizeNumber(t), nil
	default:
		return t, nil
	}
}

// normalizeNumber writes fractions and exponents in plain decimal form where JavaScript
// would, ie. 1e3 as 1000 and 2e-3 as 0.002.  Integer literals are kept as written so
// large values don't lose precision.
func normalizeNumber(n json.Number) json.Number {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		return n
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return n
	}

	if f == 0 {
		return json.Number("0")
	}

	if abs := math.Abs(f); abs < 1e-7 || abs >= 1e21 {
		return n
	}

	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}
