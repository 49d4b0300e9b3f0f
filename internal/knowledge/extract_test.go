package knowledge

import (
	"reflect"
	"strings"
	"testing"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and strips punctuation",
			text: "A CLI tool, written in Go!",
			want: []string{"cli", "written"},
		},
		{
			name: "keeps language-ish punctuation",
			text: "C++ and C# bindings for Node.js",
			want: []string{"c++", "c#", "bindings", "node.js"},
		},
		{
			name: "drops short tokens",
			text: "go js ml ai rust",
			want: []string{"rust"},
		},
		{
			name: "drops stop words",
			text: "a simple project built with the best tools",
			want: []string{"best"},
		},
		{
			name: "dedupes preserving first-seen order",
			text: "kubernetes docker kubernetes terraform docker",
			want: []string{"kubernetes", "docker", "terraform"},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "only stop words",
			text: "the and for",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestQueryKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "normal queries behave like Keywords",
			text: "Do you know Python and AWS?",
			want: []string{"python", "aws"},
		},
		{
			name: "falls back to short tokens when nothing longer survives",
			text: "x",
			want: []string{"x"},
		},
		{
			name: "stop words never survive the fallback",
			text: "the and for",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QueryKeywords(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("QueryKeywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestKeywordsIdempotent(t *testing.T) {
	text := "Distributed key-value store in Rust with Raft consensus, gRPC and Prometheus metrics."

	first := Keywords(text)
	second := Keywords(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not deterministic: %v vs %v", first, second)
	}

	// Extracting from already-extracted tokens is a no-op.
	again := Keywords(strings.Join(first, " "))
	if !reflect.DeepEqual(first, again) {
		t.Errorf("extraction not idempotent: %v vs %v", first, again)
	}
}

func TestKeywordsNoStopWordsOrShortTokens(t *testing.T) {
	text := `This project is a simple web application built with Go and the
	Gin framework. It uses Docker for deployment and has CI via GitHub Actions.
	You can use it to build your own apps.`

	for _, tok := range Keywords(text) {
		if len(tok) <= 2 {
			t.Errorf("token %q has length <= 2", tok)
		}
		if _, stop := stopWords[tok]; stop {
			t.Errorf("stop word %q leaked into output", tok)
		}
		if tok != strings.ToLower(tok) {
			t.Errorf("token %q is not lower-case", tok)
		}
	}
}
