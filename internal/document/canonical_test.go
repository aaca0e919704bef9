package document

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 20, 1, 0, 0, 0, time.UTC)

func TestCanonicalJSONBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"string", `"hello"`, `"hello"`},
		{"int", `42`, `42`},
		{"negative int", `-100`, `-100`},
		{"bool", `true`, `true`},
		{"null", `null`, `null`},
		{"empty array", `[ ]`, `[]`},
		{"empty object", `{ }`, `{}`},
		{"array of ints", `[1, 2, 3]`, `[1,2,3]`},
		{"sorted keys", `{"zebra":1,"alpha":2,"beta":3}`, `{"alpha":2,"beta":3,"zebra":1}`},
		{"nested sorted keys", `{"z":{"b":1,"a":2},"a":3}`, `{"a":3,"z":{"a":2,"b":1}}`},
		{"no html escaping", `{"pesan":"<b>Rapat & Doa</b>"}`, `{"pesan":"<b>Rapat & Doa</b>"}`},
		{"escaped html input", `"\u003cb\u003e"`, `"<b>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CanonicalJSON([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestCanonicalJSONIgnoresLayout(t *testing.T) {
	a := []byte(`{"nama":"Budi","mapel":"IPA"}`)
	b := []byte("{\n  \"mapel\": \"IPA\",\n  \"nama\": \"Budi\"\n}\n")

	ca, err := CanonicalJSON(a)
	require.NoError(t, err)
	cb, err := CanonicalJSON(b)
	require.NoError(t, err)
	assert.Equal(t, string(ca), string(cb))
}

func TestCanonicalJSONUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts
	// before U+E000 in UTF-16 but after it in UTF-8.
	input := "{\"\uE000\":1,\"\U00010000\":2}"
	result, err := CanonicalJSON([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestCanonicalJSONKeepsDecomposedText(t *testing.T) {
	decomposed, err := CanonicalJSON([]byte("\"Jose\u0301\""))
	require.NoError(t, err)
	assert.Equal(t, "\"Jose\u0301\"", string(decomposed))

	precomposed, err := CanonicalJSON([]byte("\"Jos\u00e9\""))
	require.NoError(t, err)
	assert.NotEqual(t, string(precomposed), string(decomposed))
}

func TestCanonicalJSONLineSeparators(t *testing.T) {
	result, err := CanonicalJSON([]byte(`"a\u2028b\u2029c"`))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// An escaped backslash followed by the text u2028 is not a separator.
	result, err = CanonicalJSON([]byte(`"\\u2028"`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(result))
}

func TestCanonicalJSONRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"float", `{"a":1.5}`},
		{"exponent", `1e3`},
		{"invalid json", `{"a":`},
		{"trailing data", `{} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CanonicalJSON([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestCanonicalDeterministic(t *testing.T) {
	doc := Default(fixedNow)

	first, err := Canonical(doc)
	require.NoError(t, err)
	second, err := Canonical(doc.Clone())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	raw, err := Marshal(doc)
	require.NoError(t, err)
	viaRaw, err := CanonicalJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, first, viaRaw)
}

func TestCanonicalNilCollections(t *testing.T) {
	doc := Default(fixedNow)
	doc.Leave = nil
	doc.Duty = nil
	doc.Agenda = nil

	out, err := Canonical(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"guruIzin":[]`)
	assert.Contains(t, string(out), `"guruPiket":[]`)
	assert.Contains(t, string(out), `"agenda":[]`)
	assert.NotContains(t, string(out), "null")
}

func TestCanonicalDefaultGolden(t *testing.T) {
	out, err := Canonical(Default(fixedNow))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "default_document", out)
}
