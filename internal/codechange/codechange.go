package codechange

import (
	"encoding/json"
	"fmt"

	"github.com/comigor/chatlogger-go/internal/orderedset"
)

const (
	// MaxTags caps the tags returned by Classify.
	MaxTags = 8
	// minNameLen is the shortest identifier or file name worth a tag, exclusive.
	minNameLen = 2

	// NoChanges is the placeholder shown when neither side has code.
	NoChanges = "// No code changes detected"
)

// Classify returns up to MaxTags distinct tags describing the change from
// before to after. An empty string means that side is absent.
func Classify(before, after string) []string {
	tags := orderedset.New[string]()

	switch {
	case before != "" && after != "":
		tags.Add("modified")
		if ContainsFunction(before) && ContainsFunction(after) {
			tags.Add("function")
		}
		if ContainsClass(before) && ContainsClass(after) {
			tags.Add("class")
		}
		if ContainsImport(before) || ContainsImport(after) {
			tags.Add("import")
		}
		if ContainsAPI(before) || ContainsAPI(after) {
			tags.Add("api")
		}
		if ContainsDatabase(before) || ContainsDatabase(after) {
			tags.Add("database")
		}
		if ContainsUI(before) || ContainsUI(after) {
			tags.Add("ui")
		}
		for _, name := range FunctionNames(after) {
			addCode(tags, name)
		}
		for _, name := range ClassNames(after) {
			addCode(tags, name)
		}
		for _, name := range FileNames(after) {
			addCode(tags, name)
		}
	case after != "":
		tags.Add("added", "new")
		if ContainsFunction(after) {
			tags.Add("function")
		}
		if ContainsClass(after) {
			tags.Add("class")
		}
	case before != "":
		tags.Add("removed", "deleted")
	}

	return tags.Head(MaxTags)
}

func addCode(tags *orderedset.Set[string], name string) {
	if len(name) > minNameLen {
		tags.Add("`" + name + "`")
	}
}

const sideBySide = "side_by_side"

// DiffView is the side-by-side payload for a code change, or a placeholder
// when there is nothing to show.
type DiffView struct {
	Placeholder string
	Before      string
	After       string
	Tags        []string
}

// Empty reports whether the view is the no-changes placeholder.
func (d DiffView) Empty() bool { return d.Placeholder != "" }

// MarshalJSON renders the placeholder as a bare string and the diff as
// {"type":"side_by_side",...}.
func (d DiffView) MarshalJSON() ([]byte, error) {
	if d.Empty() {
		return json.Marshal(d.Placeholder)
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(struct {
		Type   string   `json:"type"`
		Before string   `json:"before"`
		After  string   `json:"after"`
		Tags   []string `json:"tags"`
	}{sideBySide, d.Before, d.After, tags})
}

// UnmarshalJSON accepts either form written by MarshalJSON.
func (d *DiffView) UnmarshalJSON(data []byte) error {
	var placeholder string
	if err := json.Unmarshal(data, &placeholder); err == nil {
		*d = DiffView{Placeholder: placeholder}
		return nil
	}
	var side struct {
		Type   string   `json:"type"`
		Before string   `json:"before"`
		After  string   `json:"after"`
		Tags   []string `json:"tags"`
	}
	if err := json.Unmarshal(data, &side); err != nil {
		return fmt.Errorf("decode diff view: %w", err)
	}
	if side.Type != sideBySide {
		return fmt.Errorf("decode diff view: unknown type %q", side.Type)
	}
	*d = DiffView{Before: side.Before, After: side.After, Tags: side.Tags}
	return nil
}

// FormatDiff builds the display payload for a before/after pair.
func FormatDiff(before, after string) DiffView {
	if before == "" && after == "" {
		return DiffView{Placeholder: NoChanges}
	}
	return DiffView{
		Before: before,
		After:  after,
		Tags:   Classify(before, after),
	}
}
