// Package patcher loads target files, applies ordered substitution rules to
// them and writes them back.
//
// A run is all-or-nothing: every target is loaded and every rule applied in
// memory before the first file is written. If writing one target fails, the
// targets already written are restored to their original bytes.
package patcher

import (
	stderrors "errors"
	"io/fs"

	"github.com/arthur-debert/repatch/pkg/config"
	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/filesystem"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/textcodec"
	"github.com/arthur-debert/repatch/pkg/types"
	"github.com/rs/zerolog"
)

// Options configures a Patcher
type Options struct {
	// FS defaults to the OS filesystem
	FS types.FS
	// Root is the directory relative target paths resolve against
	Root string
	// OnNoMatch decides what a rule with zero matches means. Empty is warn.
	OnNoMatch types.NoMatchPolicy
	// DryRun applies every rule but writes nothing
	DryRun bool
}

// Patcher applies rules to target files
type Patcher struct {
	fs     types.FS
	root   string
	policy types.NoMatchPolicy
	dryRun bool
	logger zerolog.Logger
}

// Document is the decoded content of one target file
type Document struct {
	// Path is the resolved file path
	Path string
	// Real is Path with symbolic links resolved
	Real     string
	Encoding string
	Text     string

	// Original holds the bytes as read, for rollback
	Original []byte
	Mode     fs.FileMode
}

// New creates a Patcher
func New(opts Options) (*Patcher, error) {
	policy, err := types.ParseNoMatchPolicy(string(opts.OnNoMatch))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid no-match policy")
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	return &Patcher{
		fs:     fsys,
		root:   opts.Root,
		policy: policy,
		dryRun: opts.DryRun,
		logger: logging.GetLogger("patcher"),
	}, nil
}

// Load reads and decodes the file at path, resolved against the root
func (p *Patcher) Load(path, encoding string) (*Document, error) {
	resolved := config.ResolvePath(p.root, path)

	info, err := p.fs.Stat(resolved)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound, "file not found: %s", resolved).
				WithDetail("path", resolved)
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to stat %s", resolved).
			WithDetail("path", resolved)
	}

	realPath, err := p.fs.EvalSymlinks(resolved)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to resolve %s", resolved).
			WithDetail("path", resolved)
	}

	data, err := p.fs.ReadFile(resolved)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", resolved).
			WithDetail("path", resolved)
	}

	text, err := textcodec.Decode(data, encoding)
	if err != nil {
		perr := errors.Wrapf(err, errors.ErrDecode, "failed to decode %s", resolved).
			WithDetail("path", resolved).
			WithDetail("encoding", textcodec.Normalize(encoding))
		var decodeErr *textcodec.DecodeError
		if stderrors.As(err, &decodeErr) {
			perr = perr.WithDetail("offset", decodeErr.Offset)
		}
		return nil, perr
	}

	p.logger.Debug().
		Str("path", resolved).
		Int("bytes", len(data)).
		Msg("Loaded target")

	return &Document{
		Path:     resolved,
		Real:     realPath,
		Encoding: textcodec.Normalize(encoding),
		Text:     text,
		Original: data,
		Mode:     info.Mode().Perm(),
	}, nil
}

// Apply replaces every match of rule in text. Zero matches return text
// unchanged; the result tells whether the rule matched, or whether its guard
// shows it was applied earlier.
func Apply(text string, rule *CompiledRule) (string, types.RuleResult, error) {
	result := types.RuleResult{Rule: rule.Label}

	out, n, err := rule.matcher.Replace(text, rule.tmpl)
	if err != nil {
		return text, result, errors.Wrapf(err, errors.ErrRuleApply, "rule %s failed", rule.Label).
			WithDetail("rule", rule.Label)
	}
	result.Matches = n

	if n > 0 {
		result.Status = types.RuleApplied
		return out, result, nil
	}

	result.Status = types.RuleNoMatch
	if rule.guard != nil {
		guarded, err := rule.guard.Match(text)
		if err != nil {
			return text, result, errors.Wrapf(err, errors.ErrRuleApply, "guard of rule %s failed", rule.Label).
				WithDetail("rule", rule.Label)
		}
		if guarded {
			result.Status = types.RuleAlreadyApplied
		}
	}
	return text, result, nil
}

// Save encodes text and replaces the document's file with it, keeping the
// file mode. When the path is a symlink the file it points to is replaced.
func (p *Patcher) Save(doc *Document, text string) error {
	data, err := textcodec.Encode(text, doc.Encoding)
	if err != nil {
		return errors.Wrapf(err, errors.ErrEncode, "failed to encode %s", doc.Path).
			WithDetail("path", doc.Path).
			WithDetail("encoding", doc.Encoding)
	}
	return p.write(doc, data)
}

func (p *Patcher) write(doc *Document, data []byte) error {
	if err := filesystem.ReplaceFile(p.fs, doc.Path, data, doc.Mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", doc.Path).
			WithDetail("path", doc.Path)
	}
	p.logger.Debug().Str("path", doc.Path).Int("bytes", len(data)).Msg("Saved target")
	return nil
}
