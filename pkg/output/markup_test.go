package output

import (
	"testing"

	"github.com/arthur-debert/repatch/pkg/output/styles"
	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	in := "<Path>a.ts</Path> <Muted>(x)</Muted> <injected> $1 <Nope>n</Nope>"
	assert.Equal(t, "a.ts (x) <injected> $1 <Nope>n</Nope>", StripTags(in))
}

func TestStripTagsMultiline(t *testing.T) {
	assert.Equal(t, "one\ntwo", StripTags("<Added>one\ntwo</Added>"))
}

func TestExpandTags(t *testing.T) {
	in := "<Success>ok</Success> <other>"
	want := styles.GetStyle("Success").Render("ok") + " <other>"
	assert.Equal(t, want, ExpandTags(in))
}
