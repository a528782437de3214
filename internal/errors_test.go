package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifeforge/forge/internal"
)

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	notFound := internal.NewHTTPError(http.StatusNotFound, "not found")

	cases := map[string]struct {
		err  error
		want bool
	}{
		"direct":        {err: notFound, want: true},
		"wrapped once":  {err: fmt.Errorf("handler failed: %w", notFound), want: true},
		"wrapped twice": {err: fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", notFound)), want: true},
		"plain error":   {err: errors.New("something went wrong"), want: false},
		"nil":           {err: nil, want: false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, internal.IsHTTPError(tc.err))
		})
	}
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("extracts a direct error", func(t *testing.T) {
		t.Parallel()

		got := internal.AsHTTPError(internal.NewHTTPError(http.StatusNotFound, "not found"))
		require.NotNil(t, got)
		require.Equal(t, http.StatusNotFound, got.Code)
		require.Equal(t, "not found", got.Message)
	})

	t.Run("unwrapping preserves code and fields", func(t *testing.T) {
		t.Parallel()

		httpErr := internal.ErrForbidden("forbidden",
			internal.WithErrorCode("AUTH_001"),
			internal.WithFields(map[string]string{"token": "expired"}),
		)

		got := internal.AsHTTPError(fmt.Errorf("middleware: %w", httpErr))
		require.NotNil(t, got)
		require.Equal(t, http.StatusForbidden, got.Code)
		require.Equal(t, "forbidden", got.Message)
		require.Equal(t, "AUTH_001", got.ErrorCode)
		require.Equal(t, "expired", got.Fields["token"])
	})

	t.Run("plain error yields nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsHTTPError(errors.New("plain error")))
	})

	t.Run("nil yields nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsHTTPError(nil))
	})
}
