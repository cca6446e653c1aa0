package parser

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listerStub struct {
	ops []string
}

func (l listerStub) AvailableOperations() []string { return l.ops }

func TestSupports(t *testing.T) {
	t.Parallel()

	p := listerStub{ops: []string{"unzip"}}

	assert.True(t, Supports(p, "unzip"))
	assert.True(t, Supports(p, DefaultOperation), "process is always implicitly available")
	assert.False(t, Supports(p, "xml_to_csv"))
	assert.False(t, Supports(listerStub{}, "unzip"))
}

type fullParser struct{}

func (fullParser) Process(context.Context) error   { return nil }
func (fullParser) AvailableOperations() []string { return nil }

func TestCapabilityType(t *testing.T) {
	t.Parallel()

	for _, name := range RequiredCapabilities {
		iface, ok := CapabilityType(name)
		require.True(t, ok, "required capability %q must be known", name)
		assert.Equal(t, reflect.Interface, iface.Kind())
	}

	_, ok := CapabilityType("teleport")
	assert.False(t, ok)
}

func TestOptions_Merge(t *testing.T) {
	t.Parallel()

	defaults := Options{"overwrite": true, "delimiter": ","}
	opts := Options{"delimiter": ";"}

	merged := opts.Merge(defaults)

	assert.Equal(t, Options{"overwrite": true, "delimiter": ";"}, merged)
	assert.Equal(t, Options{"delimiter": ";"}, opts, "receiver must not be modified")
	assert.Len(t, defaults, 2, "defaults must not be modified")
}

func TestOptions_RemoteHints(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		opts   Options
		bucket string
		path   string
		ok     bool
	}{
		{name: "both present", opts: Options{OptionSourceBucket: "b", OptionSourcePath: "p/"}, bucket: "b", path: "p/", ok: true},
		{name: "bucket only", opts: Options{OptionSourceBucket: "b"}},
		{name: "empty path", opts: Options{OptionSourceBucket: "b", OptionSourcePath: ""}},
		{name: "wrong type", opts: Options{OptionSourceBucket: "b", OptionSourcePath: 3}},
		{name: "nil bag", opts: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			bucket, path, ok := tc.opts.RemoteHints()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.bucket, bucket)
			assert.Equal(t, tc.path, path)
		})
	}
}

func TestFromMap(t *testing.T) {
	t.Parallel()

	opts, err := FromMap(map[string]any{
		"password": "secret",
		"nested":   map[string]any{"depth": 2, "flags": []any{true, "x"}},
	})
	require.NoError(t, err)
	s, ok := opts.String("password")
	require.True(t, ok)
	assert.Equal(t, "secret", s)

	_, err = FromMap(map[string]any{"bad": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "option 'bad'")
}

var _ Parser = fullParser{}
