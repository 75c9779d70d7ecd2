package fjsp

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Operation is one scheduled operation: the chosen machine and its [Start, End) interval.
type Operation struct {
	Machine int `yaml:"machine" json:"machine"`
	Start   int `yaml:"start" json:"start"`
	End     int `yaml:"end" json:"end"`
}

// Schedule maps a job index to its scheduled operations in job order.
type Schedule map[int][]Operation

// Clone returns a deep copy of s.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	out := make(Schedule, len(s))
	for j, ops := range s {
		out[j] = append([]Operation(nil), ops...)
	}
	return out
}

var operationFields = [...]string{"machine", "start", "end"}

// ReadSchedule decodes a schedule document. YAML and JSON are both accepted; job keys may be
// integers or integer strings. Every operation must carry integer machine, start and end
// fields and nothing else.
func ReadSchedule(r io.Reader) (Schedule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var raw map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WithMessage(err, "schedule is not a job mapping")
	}

	s := make(Schedule, len(raw))
	for k, v := range raw {
		job, err := jobKey(k)
		if err != nil {
			return nil, err
		}
		if _, dup := s[job]; dup {
			return nil, errors.Errorf("job %d listed twice", job)
		}
		items, ok := v.([]interface{})
		if !ok && v != nil {
			return nil, errors.Errorf("job %d: operations must be a list", job)
		}
		ops := make([]Operation, len(items))
		for o, item := range items {
			op, err := decodeOperation(item)
			if err != nil {
				return nil, errors.WithMessagef(err, "job %d operation %d", job, o)
			}
			ops[o] = op
		}
		s[job] = ops
	}
	return s, nil
}

// WriteSchedule encodes s as YAML with jobs in increasing order.
func WriteSchedule(w io.Writer, s Schedule) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = w.Write(data)
	return errors.WithStack(err)
}

func jobKey(k interface{}) (int, error) {
	switch v := k.(type) {
	case int:
		return v, nil
	case string:
		job, err := strconv.Atoi(v)
		if err != nil {
			return 0, errors.Errorf("job key %q is not an integer", v)
		}
		return job, nil
	default:
		return 0, errors.Errorf("job key %v has type %T", k, k)
	}
}

func decodeOperation(item interface{}) (Operation, error) {
	fields, ok := item.(map[interface{}]interface{})
	if !ok {
		return Operation{}, errors.Errorf("operation must be a mapping (got %T)", item)
	}
	if len(fields) != len(operationFields) {
		return Operation{}, errors.Errorf("operation must have exactly the fields %v", operationFields)
	}
	var vals [len(operationFields)]int
	for i, name := range operationFields {
		raw, ok := fields[name]
		if !ok {
			return Operation{}, errors.Errorf("missing field %q", name)
		}
		v, ok := raw.(int)
		if !ok {
			return Operation{}, errors.Errorf("field %q must be an integer (got %s)", name, describe(raw))
		}
		vals[i] = v
	}
	return Operation{Machine: vals[0], Start: vals[1], End: vals[2]}, nil
}

func describe(v interface{}) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T %v", v, v)
}
