// Copyright 2025 The Kube Resource Orchestrator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may
// not use this file except in compliance with the License. A copy of the
// License is located at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
// express or implied. See the License for the specific language governing
// permissions and limitations under the License.

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexIdentifierAndMember(t *testing.T) {
	toks, err := Lex("schema.spec.name")
	require.NoError(t, err)
	assert.Equal(t, []Kind{Ident, Punct, Ident, Punct, Ident, EOF}, kinds(toks))
	assert.Equal(t, "schema", toks[0].Value)
}

func TestLexNumber(t *testing.T) {
	toks, err := Lex("42")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, Number, toks[0].Kind)
	assert.Equal(t, float64(42), toks[0].Value)
}

func TestLexFloat(t *testing.T) {
	toks, err := Lex("3.14")
	require.NoError(t, err)
	assert.Equal(t, float64(3.14), toks[0].Value)
}

func TestLexBoolAndNull(t *testing.T) {
	toks, err := Lex("true false null")
	require.NoError(t, err)
	assert.Equal(t, Bool, toks[0].Kind)
	assert.Equal(t, true, toks[0].Value)
	assert.Equal(t, Bool, toks[1].Kind)
	assert.Equal(t, false, toks[1].Value)
	assert.Equal(t, Null, toks[2].Kind)
}

func TestLexQuotedString(t *testing.T) {
	toks, err := Lex(`"hello \"world\""`)
	require.NoError(t, err)
	assert.Equal(t, String, toks[0].Kind)
	assert.Equal(t, `hello "world"`, toks[0].Value)
}

func TestLexSingleQuotedString(t *testing.T) {
	toks, err := Lex(`'it''s'`)
	require.NoError(t, err)
	assert.Equal(t, String, toks[0].Kind)
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := Lex(`"unterminated`)
	require.Error(t, err)
}

func TestLexMultiCharPuncts(t *testing.T) {
	toks, err := Lex("a?.b ?? c && d || e == f != g <= h >= i")
	require.NoError(t, err)
	var puncts []string
	for _, tok := range toks {
		if tok.Kind == Punct {
			puncts = append(puncts, tok.Lexeme)
		}
	}
	assert.Equal(t, []string{"?.", "??", "&&", "||", "==", "!=", "<=", ">="}, puncts)
}

func TestLexTemplateLiteralRaw(t *testing.T) {
	toks, err := Lex("`hello ${a.b} world ${c}`")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, TemplateRaw, toks[0].Kind)
	assert.Equal(t, "hello ${a.b} world ${c}", toks[0].Value)
}

func TestLexTemplateLiteralWithNestedBraces(t *testing.T) {
	toks, err := Lex("`val: ${ {a: 1} }`")
	require.NoError(t, err)
	assert.Equal(t, TemplateRaw, toks[0].Kind)
	assert.Equal(t, "val: ${ {a: 1} }", toks[0].Value)
}

func TestLexUnterminatedTemplate(t *testing.T) {
	_, err := Lex("`unterminated ${a}")
	require.Error(t, err)
}

func TestLexUnexpectedCharacter(t *testing.T) {
	_, err := Lex("a @ b")
	require.Error(t, err)
}

func TestLexAssignmentPunct(t *testing.T) {
	toks, err := Lex("a = 1")
	require.NoError(t, err)
	assert.Equal(t, Punct, toks[1].Kind)
	assert.Equal(t, "=", toks[1].Lexeme)
}

func TestLexPositionTracking(t *testing.T) {
	toks, err := Lex("foo\nbar")
	require.NoError(t, err)
	assert.Equal(t, 0, toks[0].Line)
	assert.Equal(t, 1, toks[1].Line)
}
