package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamDefault(t *testing.T) {
	_, ok := NoDefault().Resolve()
	assert.False(t, ok)

	expr, ok := DefaultExpr("42").Resolve()
	require.True(t, ok)
	assert.Equal(t, "42", expr)

	expr, ok = DefaultThunk(func() string { return "None" }).Resolve()
	require.True(t, ok)
	assert.Equal(t, "None", expr)

	expr, ok = DefaultLiteral([]any{1, "a"}).Resolve()
	require.True(t, ok)
	assert.Equal(t, `[1, "a"]`, expr)

	_, ok = DefaultLiteral(struct{}{}).Resolve()
	assert.False(t, ok, "values without a literal form have no default")
}

func TestDeprecatedRecordMessage(t *testing.T) {
	assert.Equal(t, "[Since 0.9] use frobnicate", DeprecatedRecord{Since: "0.9", Note: "use frobnicate"}.Message())
	assert.Equal(t, "[Since 0.9]", DeprecatedRecord{Since: "0.9"}.Message())
	assert.Equal(t, "use frobnicate", DeprecatedRecord{Note: "use frobnicate"}.Message())
	assert.Equal(t,
		`@typing_extensions.deprecated("[Since 0.9] use frobnicate")`,
		DeprecatedRecord{Since: "0.9", Note: "use frobnicate"}.Decorator(),
	)
}

func TestCheckSignatureNames(t *testing.T) {
	params := []ParamRecord{
		{Name: "a", Kind: PositionalOrKeyword},
		{Name: "b", Kind: KeywordOnly},
	}
	assert.NoError(t, CheckSignatureNames([]string{"a", "b"}, params))
	assert.Error(t, CheckSignatureNames([]string{"a"}, params))
	assert.Error(t, CheckSignatureNames([]string{"a", "c"}, params))
}
