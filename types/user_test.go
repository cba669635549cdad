package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserInput_UnmarshalDistinguishesAbsentNullAndValue(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		usernameSet  bool
		usernameNull bool
		emailSet     bool
		emailNull    bool
	}{
		{name: "empty object", body: `{}`},
		{name: "username only", body: `{"username":"linghu"}`, usernameSet: true},
		{name: "null email", body: `{"email":null}`, emailSet: true, emailNull: true},
		{name: "both values", body: `{"username":"linghu","email":"linghu@gmail.com"}`, usernameSet: true, emailSet: true},
		{name: "null username", body: `{"username":null}`, usernameSet: true, usernameNull: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in UserInput
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))

			assert.Equal(t, tt.usernameSet, in.Username.IsSet())
			assert.Equal(t, tt.usernameNull, in.Username.IsNull())
			assert.Equal(t, tt.emailSet, in.Email.IsSet())
			assert.Equal(t, tt.emailNull, in.Email.IsNull())
		})
	}
}

func TestUserInput_UnmarshalRejectsWrongType(t *testing.T) {
	var in UserInput
	err := json.Unmarshal([]byte(`{"username":42}`), &in)
	require.Error(t, err)
}

func TestUserInput_MarshalOmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(UserInput{Username: Set("linghu"), Email: Null[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"linghu","email":null}`, string(data))

	data, err = json.Marshal(UserInput{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestUserInput_Apply(t *testing.T) {
	email := "linghu@gmail.com"
	base := User{ID: 1, Username: "linghu", Email: &email}

	t.Run("username only keeps email", func(t *testing.T) {
		got := UserInput{Username: Set("linghu-update")}.Apply(base)
		assert.Equal(t, "linghu-update", got.Username)
		require.NotNil(t, got.Email)
		assert.Equal(t, email, *got.Email)
	})

	t.Run("email only keeps username", func(t *testing.T) {
		got := UserInput{Email: Set("new@gmail.com")}.Apply(base)
		assert.Equal(t, "linghu", got.Username)
		require.NotNil(t, got.Email)
		assert.Equal(t, "new@gmail.com", *got.Email)
	})

	t.Run("null email clears", func(t *testing.T) {
		got := UserInput{Email: Null[string]()}.Apply(base)
		assert.Nil(t, got.Email)
	})

	t.Run("nothing set is a no-op", func(t *testing.T) {
		got := UserInput{}.Apply(base)
		assert.Equal(t, base, got)
	})

	t.Run("does not alias input value", func(t *testing.T) {
		in := UserInput{Email: Set("a@b.io")}
		got := in.Apply(base)
		*got.Email = "changed@b.io"
		v, _ := in.Email.Value()
		assert.Equal(t, "a@b.io", v)
	})
}

func TestUser_ViewHidesDeletedFlag(t *testing.T) {
	u := User{ID: 7, Username: "linghu", IsDeleted: true}
	data, err := json.Marshal(u.View())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"username":"linghu","email":null}`, string(data))
}
