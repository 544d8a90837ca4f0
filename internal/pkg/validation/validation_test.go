package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garaadka-laundry/internal/pkg/rest_err"
)

type sampleItem struct {
	Quantity int `json:"quantity" binding:"min=1"`
}

type sample struct {
	Name  string       `json:"customer_name" binding:"required,two_words"`
	Phone string       `json:"phone_number" binding:"required,phone"`
	Date  string       `json:"close_date" binding:"omitempty,ymd"`
	Kind  string       `json:"status" binding:"omitempty,oneof=pending ready"`
	Verb  string       `json:"action_type" binding:"omitempty,oneof_fold=CREATE DELETE"`
	Items []sampleItem `json:"items" binding:"omitempty,dive"`
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("+252 61 555 1234"))
	assert.True(t, IsPhone("0615551234"))
	assert.True(t, IsPhone("(061) 555-1234"))
	assert.False(t, IsPhone("12345"))
	assert.False(t, IsPhone("call-me"))
	assert.Equal(t, "+252615551234", NormalizePhone(" +252 61-555-1234 "))
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(sample{Name: "Amina Yusuf", Phone: "+252615551234", Date: "2024-05-01", Kind: "ready", Verb: "create"})
	assert.NoError(t, err)
}

func TestStruct_OneOfFold(t *testing.T) {
	for _, verb := range []string{"CREATE", "create", "Delete"} {
		assert.NoError(t, Struct(sample{Name: "Amina Yusuf", Phone: "+252615551234", Verb: verb}), verb)
	}

	err := Struct(sample{Name: "Amina Yusuf", Phone: "+252615551234", Verb: "drop"})
	require.Error(t, err)
	restErr := Translate(err)
	require.Len(t, restErr.Causes, 1)
	assert.Equal(t, "action_type", restErr.Causes[0].Field)
	assert.Equal(t, "must be one of: CREATE, DELETE", restErr.Causes[0].Message)
}

func TestStruct_TranslatesCauses(t *testing.T) {
	err := Struct(sample{
		Name:  "Amina",
		Phone: "abc",
		Date:  "01/05/2024",
		Kind:  "lost",
		Items: []sampleItem{{Quantity: 0}},
	})
	require.Error(t, err)

	restErr := Translate(err)
	assert.Equal(t, 400, restErr.Code)
	assert.Equal(t, rest_err.ErrBadRequest, restErr.Err)

	fields := map[string]string{}
	for _, c := range restErr.Causes {
		fields[c.Field] = c.Message
	}
	assert.Equal(t, "must contain at least two words", fields["customer_name"])
	assert.Equal(t, "must be a valid phone number", fields["phone_number"])
	assert.Equal(t, "must be a date in YYYY-MM-DD format", fields["close_date"])
	assert.Equal(t, "must be one of: pending, ready", fields["status"])
	assert.Equal(t, "must be at least 1", fields["items[0].quantity"])
}

func TestTranslate_NonValidationError(t *testing.T) {
	restErr := Translate(assert.AnError)
	assert.Equal(t, "invalid json body", restErr.Message)
	assert.Empty(t, restErr.Causes)
}
