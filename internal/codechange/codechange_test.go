package codechange

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_NoCode(t *testing.T) {
	require.Empty(t, Classify("", ""))
	require.NotNil(t, Classify("", ""))
}

func TestClassify_OnlyAfter(t *testing.T) {
	tags := Classify("", "def retry(fn, attempts=3):\n    return fn()")
	assert.ElementsMatch(t, []string{"added", "new", "function"}, tags)

	tags = Classify("", "class Retry:\n    pass")
	assert.ElementsMatch(t, []string{"added", "new", "class"}, tags)

	tags = Classify("", "x = 1")
	assert.ElementsMatch(t, []string{"added", "new"}, tags)
}

func TestClassify_OnlyBefore(t *testing.T) {
	assert.ElementsMatch(t, []string{"removed", "deleted"}, Classify("def gone(): pass", ""))
}

func TestClassify_Modified(t *testing.T) {
	tags := Classify("def f(): pass", "def f():\n    return 1")
	assert.Contains(t, tags, "modified")
	assert.Contains(t, tags, "function")
	// single-letter names are below the name-tag threshold
	assert.NotContains(t, tags, "`f`")

	tags = Classify("def fetch(): pass", "def fetch():\n    return 1")
	assert.Contains(t, tags, "modified")
	assert.Contains(t, tags, "function")
	assert.Contains(t, tags, "`fetch`")
}

func TestClassify_BothSidesRule(t *testing.T) {
	// function only on the after side is not a "function" modification
	tags := Classify("x = 1", "def compute():\n    return 2")
	assert.Contains(t, tags, "modified")
	assert.NotContains(t, tags, "function")
	assert.Contains(t, tags, "`compute`")

	// class only on the before side
	tags = Classify("class Old: pass", "x = 2")
	assert.NotContains(t, tags, "class")
}

func TestClassify_EitherSideRule(t *testing.T) {
	tags := Classify("import os", "x = 2")
	assert.Contains(t, tags, "import")

	tags = Classify("x = 1", "resp = requests.get(url)")
	assert.Contains(t, tags, "api")

	tags = Classify("rows = db.fetch()", "x = 2")
	assert.Contains(t, tags, "database")

	tags = Classify("x = 1", "button.click()")
	assert.Contains(t, tags, "ui")
}

func TestClassify_FileNames(t *testing.T) {
	tags := Classify("x = 1", "open('config.json')\nload(\"ab.md\")")
	assert.Contains(t, tags, "`config.json`")
	assert.Contains(t, tags, "`ab.md`")
}

func TestClassify_Bounds(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "def handler_%d(request):\n    return db.query('view_%d.html')\n", i, i)
	}
	after := b.String() + "import os\nclass Widget: pass\n"
	before := "import sys\nclass Widget: pass\ndef handler_0(request): pass"

	tags := Classify(before, after)
	require.LessOrEqual(t, len(tags), MaxTags)
	seen := map[string]bool{}
	for _, tag := range tags {
		require.False(t, seen[tag], "duplicate tag %q", tag)
		seen[tag] = true
	}
	assert.Contains(t, tags, "modified")
}

func TestClassify_DuplicateNames(t *testing.T) {
	tags := Classify("def load(): pass", "def load(): pass\ndef load(): return 1")
	count := 0
	for _, tag := range tags {
		if tag == "`load`" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestFormatDiff(t *testing.T) {
	view := FormatDiff("", "")
	require.True(t, view.Empty())
	data, err := json.Marshal(view)
	require.NoError(t, err)
	require.JSONEq(t, `"// No code changes detected"`, string(data))

	view = FormatDiff("", "def added_fn(): pass")
	require.False(t, view.Empty())
	require.Equal(t, "", view.Before)
	data, err = json.Marshal(view)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "side_by_side", out["type"])
	assert.Equal(t, "", out["before"])
	assert.Equal(t, "def added_fn(): pass", out["after"])
	assert.ElementsMatch(t, []any{"added", "new", "function"}, out["tags"])
}

func TestFormatDiff_RemovedOnly(t *testing.T) {
	view := FormatDiff("old()", "")
	assert.Equal(t, "", view.After)
	assert.ElementsMatch(t, []string{"removed", "deleted"}, view.Tags)
}

func TestDiffView_DecodesBothForms(t *testing.T) {
	for _, view := range []DiffView{FormatDiff("", ""), FormatDiff("def f(): pass", "def f():\n    return 1")} {
		data, err := json.Marshal(view)
		require.NoError(t, err)
		var got DiffView
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, view, got)
	}

	var got DiffView
	assert.Error(t, json.Unmarshal([]byte(`{"type":"unified","before":"a"}`), &got))
	assert.Error(t, json.Unmarshal([]byte(`42`), &got))
}
