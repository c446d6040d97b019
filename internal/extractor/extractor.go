// Package extractor scans a contacts export and pulls out, for every contact
// block, the contact's name and the marker-bearing parts of its
// description field.
//
// An export is a sequence of blocks. Each block starts with a sentinel line;
// the name sits on a fixed non-blank line after the sentinel and the
// description field on a later one. Empty lines do not count towards either
// offset. The scan is an explicit state machine:
//
//	AwaitingBlock --sentinel--> ExpectName --name line--> ExpectField --field line--> Skip
//	      any state --sentinel--> ExpectName
//
// Lines before the first sentinel and after the field line of a block are
// ignored. A block whose field line has no qualifying part is dropped.
package extractor

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/Laisky/errors/v2"
	"golang.org/x/text/unicode/norm"

	"connections/internal/domain"
)

// ErrDuplicateContact is returned under the "error" collision policy.
var ErrDuplicateContact = errors.New("duplicate contact")

// State is a position of the block scanner.
type State int

const (
	// AwaitingBlock is the initial state; nothing is captured until a sentinel.
	AwaitingBlock State = iota
	// ExpectName counts non-blank lines until the name line.
	ExpectName
	// ExpectField counts non-blank lines until the description field line.
	ExpectField
	// Skip ignores the remainder of a block.
	Skip
)

func (s State) String() string {
	switch s {
	case AwaitingBlock:
		return "AwaitingBlock"
	case ExpectName:
		return "ExpectName"
	case ExpectField:
		return "ExpectField"
	case Skip:
		return "Skip"
	default:
		return "Unknown"
	}
}

// CollisionPolicy decides what happens when a name is recorded twice.
type CollisionPolicy string

const (
	// KeepLast replaces earlier entries; the name keeps its first position.
	KeepLast CollisionPolicy = "last"
	// KeepFirst ignores later blocks for a name already recorded.
	KeepFirst CollisionPolicy = "first"
	// Merge appends later entries to the earlier ones.
	Merge CollisionPolicy = "merge"
	// Fail aborts extraction with ErrDuplicateContact.
	Fail CollisionPolicy = "error"
)

// Options describes the export layout.
type Options struct {
	Sentinel       string
	NameOffset     int
	FieldOffset    int
	FieldDelimiter string
	Marker         string
	Collision      CollisionPolicy
}

// DefaultOptions matches the layout of a copied connections page.
func DefaultOptions() Options {
	return Options{
		Sentinel:       "Message",
		NameOffset:     3,
		FieldOffset:    5,
		FieldDelimiter: "|",
		Marker:         "@",
		Collision:      KeepLast,
	}
}

// Stats summarizes a scan. Mismatched layouts do not fail extraction, so
// these counters are the only signal that an export did not line up.
type Stats struct {
	Lines      int
	Blocks     int
	Contacts   int
	Dropped    int
	Collisions int
}

// Extractor turns export lines into raw entries per contact.
type Extractor struct {
	opts Options
}

// New validates opts and returns an Extractor.
func New(opts Options) (*Extractor, error) {
	if opts.Sentinel == "" {
		return nil, errors.New("sentinel is required")
	}
	if opts.NameOffset <= 0 || opts.FieldOffset <= opts.NameOffset {
		return nil, errors.Errorf("offsets must satisfy 0 < name < field, got %d and %d",
			opts.NameOffset, opts.FieldOffset)
	}
	if opts.FieldDelimiter == "" || opts.Marker == "" {
		return nil, errors.New("field delimiter and marker are required")
	}
	switch opts.Collision {
	case "":
		opts.Collision = KeepLast
	case KeepLast, KeepFirst, Merge, Fail:
	default:
		return nil, errors.Errorf("unknown collision policy %q", opts.Collision)
	}
	return &Extractor{opts: opts}, nil
}

// ExtractFile reads the export at path.
func (e *Extractor) ExtractFile(path string) (domain.Contacts[domain.RawEntry], Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Contacts[domain.RawEntry]{}, Stats{}, errors.Wrapf(err, "open export %s", path)
	}
	defer f.Close()
	return e.Extract(f)
}

// Extract scans r line by line.
func (e *Extractor) Extract(r io.Reader) (domain.Contacts[domain.RawEntry], Stats, error) {
	sc := newScan(e.opts)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if ferr := sc.feed(line); ferr != nil {
				return domain.Contacts[domain.RawEntry]{}, sc.stats, ferr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Contacts[domain.RawEntry]{}, sc.stats, errors.Wrap(err, "read export")
		}
	}
	sc.stats.Contacts = sc.out.Len()
	return sc.out.Build(), sc.stats, nil
}

// ExtractLines scans lines that have already been split; terminators are optional.
func (e *Extractor) ExtractLines(lines []string) (domain.Contacts[domain.RawEntry], Stats, error) {
	sc := newScan(e.opts)
	for _, line := range lines {
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		if err := sc.feed(line); err != nil {
			return domain.Contacts[domain.RawEntry]{}, sc.stats, err
		}
	}
	sc.stats.Contacts = sc.out.Len()
	return sc.out.Build(), sc.stats, nil
}

type scan struct {
	opts  Options
	state State
	gap   int
	name  string
	stats Stats
	out   *domain.ContactsBuilder[domain.RawEntry]
}

func newScan(opts Options) *scan {
	return &scan{
		opts:  opts,
		state: AwaitingBlock,
		out:   domain.NewContactsBuilder[domain.RawEntry](),
	}
}

// feed advances the machine by one line. The line still carries its
// terminator, normalized to "\n", so field parts keep their trailing newline.
func (s *scan) feed(raw string) error {
	s.stats.Lines++
	line := norm.NFC.String(strings.ReplaceAll(raw, "\r\n", "\n"))
	bare := strings.TrimSuffix(line, "\n")
	if bare == "" {
		return nil
	}
	if bare == s.opts.Sentinel {
		s.stats.Blocks++
		s.state = ExpectName
		s.gap = s.opts.NameOffset - 1
		return nil
	}

	switch s.state {
	case AwaitingBlock, Skip:
	case ExpectName:
		if s.gap > 0 {
			s.gap--
			return nil
		}
		s.name = strings.TrimSpace(bare)
		s.state = ExpectField
		s.gap = s.opts.FieldOffset - s.opts.NameOffset - 1
	case ExpectField:
		if s.gap > 0 {
			s.gap--
			return nil
		}
		s.state = Skip
		return s.record(line)
	}
	return nil
}

func (s *scan) record(field string) error {
	var parts []domain.RawEntry
	for _, p := range strings.Split(field, s.opts.FieldDelimiter) {
		if p != "" && strings.Contains(p, s.opts.Marker) {
			parts = append(parts, domain.RawEntry(p))
		}
	}
	if len(parts) == 0 {
		s.stats.Dropped++
		return nil
	}

	if !s.out.Has(s.name) {
		s.out.Set(s.name, parts)
		return nil
	}
	s.stats.Collisions++
	switch s.opts.Collision {
	case KeepFirst:
	case Merge:
		s.out.Append(s.name, parts)
	case Fail:
		return errors.Wrapf(ErrDuplicateContact, "%q", s.name)
	default:
		s.out.Set(s.name, parts)
	}
	return nil
}
