package validation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nauticalab/propbind/pkg/binding"
	"github.com/nauticalab/propbind/pkg/coerce"
	"github.com/nauticalab/propbind/pkg/problems"
)

type beanClass struct {
	StringValue *string `config:"string-value" validate:"required"`
	IntValue    int    `config:"int-value" validate:"min=1,max=100"`
}

type Embedded struct {
	Host string `config:"host" validate:"hostname"`
}

type sizedClass struct {
	Embedded
	Name      string   `config:"name" validate:"min=3"`
	Tags      []string `config:"tags" validate:"max=2"`
	Mode      string   `config:"mode" validate:"oneof=fast slow"`
	Namespace string   `config:"namespace" validate:"dns_label"`
	Format    string   `config:"format" validate:"log_format"`
	Untracked int      `validate:"gt=0"`
}

type checkedClass struct {
	Min int `config:"min"`
	Max int `config:"max"`
}

func (c checkedClass) Validate() error {
	if c.Min > c.Max {
		return errors.New("min must not exceed max")
	}
	return nil
}

func specOf(t *testing.T, v any) *binding.Spec {
	t.Helper()
	spec, err := binding.Build(reflect.TypeOf(v), coerce.NewRegistry())
	require.NoError(t, err)
	return spec
}

func TestCheckValid(t *testing.T) {
	v := New()
	var sink problems.Problems

	value := "has value"
	ok := v.Check(&beanClass{StringValue: &value, IntValue: 50}, specOf(t, beanClass{}), "", &sink)

	assert.True(t, ok)
	assert.Zero(t, sink.Len())
}

func TestCheckCollectsAllViolations(t *testing.T) {
	cases := []struct {
		prefix string
		want   []string
	}{
		{"", []string{
			"Invalid configuration property string-value: must not be null (validation.beanClass)",
			"Invalid configuration property int-value: must be less than or equal to 100 (validation.beanClass)",
		}},
		{"example", []string{
			"Invalid configuration property example.string-value: must not be null (validation.beanClass)",
			"Invalid configuration property example.int-value: must be less than or equal to 100 (validation.beanClass)",
		}},
	}
	for _, tc := range cases {
		t.Run("prefix="+tc.prefix, func(t *testing.T) {
			v := New()
			var sink problems.Problems

			ok := v.Check(&beanClass{IntValue: 5000}, specOf(t, beanClass{}), tc.prefix, &sink)

			assert.False(t, ok)
			assert.ElementsMatch(t, tc.want, sink.ErrorTexts())
			for _, m := range sink.Errors {
				assert.Equal(t, problems.KindConstraint, m.Kind)
			}
		})
	}
}

func TestCheckRequired(t *testing.T) {
	type requiredClass struct {
		Nullable *string `config:"nullable" validate:"required"`
		Name     string  `config:"name" validate:"required"`
	}
	v := New()

	var sink problems.Problems
	ok := v.Check(&requiredClass{}, specOf(t, requiredClass{}), "", &sink)
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{
		"Invalid configuration property nullable: must not be null (validation.requiredClass)",
		"Invalid configuration property name: must not be empty (validation.requiredClass)",
	}, sink.ErrorTexts())

	empty := ""
	sink = problems.Problems{}
	ok = v.Check(&requiredClass{Nullable: &empty, Name: "x"}, specOf(t, requiredClass{}), "", &sink)
	assert.True(t, ok)
	assert.Zero(t, sink.Len())
}

func TestCheckMessages(t *testing.T) {
	v := New()
	var sink problems.Problems

	v.Check(&sizedClass{
		Embedded:  Embedded{Host: "bad host!"},
		Name:      "ab",
		Tags:      []string{"a", "b", "c"},
		Mode:      "medium",
		Namespace: "Not_A_Label",
		Format:    "xml",
	}, specOf(t, sizedClass{}), "svc", &sink)

	assert.ElementsMatch(t, []string{
		"Invalid configuration property svc.host: must be a valid hostname (validation.sizedClass)",
		"Invalid configuration property svc.name: size must be greater than or equal to 3 (validation.sizedClass)",
		"Invalid configuration property svc.tags: size must be less than or equal to 2 (validation.sizedClass)",
		"Invalid configuration property svc.mode: must be one of [fast slow] (validation.sizedClass)",
		"Invalid configuration property svc.namespace: must be a valid DNS-1123 label (validation.sizedClass)",
		"Invalid configuration property svc.format: must be one of [console json] (validation.sizedClass)",
		"Invalid configuration property svc.Untracked: must be greater than 0 (validation.sizedClass)",
	}, sink.ErrorTexts())
}

func TestCheckerHook(t *testing.T) {
	v := New()
	spec := specOf(t, checkedClass{})

	var sink problems.Problems
	assert.True(t, v.Check(&checkedClass{Min: 1, Max: 2}, spec, "", &sink))
	assert.Zero(t, sink.Len())

	assert.False(t, v.Check(&checkedClass{Min: 3, Max: 2}, spec, "", &sink))
	assert.Equal(t, []string{
		"Invalid configuration: min must not exceed max (validation.checkedClass)",
	}, sink.ErrorTexts())
}

func TestRegisterConstraint(t *testing.T) {
	v := New()
	err := v.RegisterConstraint("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}, "must be even")
	require.NoError(t, err)

	type evenClass struct {
		N int `config:"n" validate:"even"`
	}
	var sink problems.Problems
	v.Check(&evenClass{N: 3}, specOf(t, evenClass{}), "", &sink)

	require.Len(t, sink.Errors, 1)
	assert.Contains(t, sink.Errors[0].Text, "Invalid configuration property n: must be even (")
	assert.Equal(t, "n", sink.Errors[0].Key)
}

func TestCheckNotAStruct(t *testing.T) {
	v := New()
	var sink problems.Problems

	assert.False(t, v.Check(nil, &binding.Spec{Name: "nothing"}, "", &sink))
	assert.Len(t, sink.Errors, 1)
}
