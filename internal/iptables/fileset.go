package iptables

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/afero"

	"grimm.is/firn/internal/rules"
)

// builtinChains lists the kernel chains per table, in traversal order.
var builtinChains = map[string][]string{
	"filter":   {"INPUT", "FORWARD", "OUTPUT"},
	"nat":      {"PREROUTING", "INPUT", "OUTPUT", "POSTROUTING"},
	"mangle":   {"PREROUTING", "INPUT", "FORWARD", "OUTPUT", "POSTROUTING"},
	"raw":      {"PREROUTING", "OUTPUT"},
	"security": {"INPUT", "FORWARD", "OUTPUT"},
}

// tableOrder fixes the table output order so renders are deterministic.
var tableOrder = []string{"raw", "mangle", "nat", "filter", "security"}

// IsBuiltinChain reports whether chain is a kernel chain of table.
func IsBuiltinChain(table, chain string) bool {
	for _, c := range builtinChains[table] {
		if c == chain {
			return true
		}
	}
	return false
}

// FileName returns the ruleset file name for a family.
func FileName(family rules.Family) string {
	if family == rules.FamilyIPv6 {
		return "ip6tables.rules"
	}
	return "iptables.rules"
}

// RestoreCommand returns the tool that applies a family's ruleset.
func RestoreCommand(family rules.Family) string {
	if family == rules.FamilyIPv6 {
		return "ip6tables-restore"
	}
	return "iptables-restore"
}

// Entry is one rule's rendered lines plus the keys that place it.
type Entry struct {
	Table string
	Chain string
	Order string
	Title string
	Lines []string
}

// tableSection collects everything bound for one *table block.
type tableSection struct {
	name     string
	chains   []string // custom chains, declaration order
	preamble []string // jump hookups, rendered before sorted entries
	entries  []Entry
}

// File is the generated ruleset for one address family.
type File struct {
	family rules.Family
	header []string
	tables map[string]*tableSection
}

func newFile(family rules.Family) *File {
	return &File{
		family: family,
		tables: make(map[string]*tableSection),
	}
}

// Family returns the address family this file is for.
func (f *File) Family() rules.Family { return f.family }

// SetHeader replaces the comment lines at the top of the file.
func (f *File) SetHeader(lines ...string) { f.header = lines }

func (f *File) section(table string) *tableSection {
	if table == "" {
		table = "filter"
	}
	sec, ok := f.tables[table]
	if !ok {
		sec = &tableSection{name: table}
		f.tables[table] = sec
	}
	return sec
}

// DeclareChain registers a custom chain in the table. Builtin chains need no
// declaration and duplicates collapse.
func (f *File) DeclareChain(table, chain string) {
	sec := f.section(table)
	if IsBuiltinChain(sec.name, chain) {
		return
	}
	for _, c := range sec.chains {
		if c == chain {
			return
		}
	}
	sec.chains = append(sec.chains, chain)
}

// AddPreamble appends a rule line rendered ahead of the sorted entries, used
// for chain jump hookups.
func (f *File) AddPreamble(table, line string) {
	sec := f.section(table)
	sec.preamble = append(sec.preamble, line)
}

// Append adds one rule's lines, declaring its chain on the way in so the
// restore file never references an undeclared chain.
func (f *File) Append(e Entry) {
	sec := f.section(e.Table)
	f.DeclareChain(sec.name, chainOrDefault(e.Chain))
	sec.entries = append(sec.entries, e)
}

// Render produces the file in iptables-restore format.
func (f *File) Render() []byte {
	b := &restoreBuilder{}

	for _, line := range f.header {
		b.writeComment(line)
	}

	for _, name := range tableOrder {
		sec, ok := f.tables[name]
		if !ok {
			continue
		}
		b.startTable(sec.name)
		for _, chain := range builtinChains[sec.name] {
			b.writeChainPolicy(chain, "ACCEPT")
		}
		for _, chain := range sec.chains {
			b.writeChain(chain)
		}
		for _, line := range sec.preamble {
			b.writeRule(line)
		}
		for _, e := range sortedEntries(sec.entries) {
			for _, line := range e.Lines {
				b.writeRule(line)
			}
		}
		b.endTable()
	}

	return b.bytes()
}

// RuleCount returns the number of entries across all tables.
func (f *File) RuleCount() int {
	n := 0
	for _, sec := range f.tables {
		n += len(sec.entries)
	}
	return n
}

// FileSet holds the rulesets for both families. A family appears in the
// output only once something has activated it.
type FileSet struct {
	files map[rules.Family]*File
}

// NewFileSet returns an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{files: make(map[rules.Family]*File)}
}

func (fs *FileSet) ensure(family rules.Family) *File {
	f, ok := fs.files[family]
	if !ok {
		f = newFile(family)
		fs.files[family] = f
	}
	return f
}

// File returns the ruleset for a family, if activated.
func (fs *FileSet) File(family rules.Family) (*File, bool) {
	f, ok := fs.files[family]
	return f, ok
}

// Families returns the activated families, v4 before v6.
func (fs *FileSet) Families() []rules.Family {
	var fams []rules.Family
	for _, fam := range []rules.Family{rules.FamilyIPv4, rules.FamilyIPv6} {
		if _, ok := fs.files[fam]; ok {
			fams = append(fams, fam)
		}
	}
	return fams
}

// WriteTo writes one ruleset file per activated family into dir and returns
// the written paths.
func (fs *FileSet) WriteTo(afs afero.Fs, dir string) ([]string, error) {
	if err := afs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	for _, fam := range fs.Families() {
		f := fs.files[fam]
		path := filepath.Join(dir, FileName(fam))
		if err := afero.WriteFile(afs, path, f.Render(), 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// sortedEntries orders rules by their order key, falling back to the title.
// The sort is stable, so rules with equal keys keep emit order.
func sortedEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return orderLess(sortKey(out[i]), sortKey(out[j]))
	})
	return out
}

func sortKey(e Entry) string {
	if e.Order != "" {
		return e.Order
	}
	return e.Title
}

// orderLess compares numeric prefixes numerically and the remainder as
// strings, so "20 dns" sorts before "100 ssh". Keys with a numeric prefix
// come before keys without one.
func orderLess(a, b string) bool {
	an, arest, aok := numericPrefix(a)
	bn, brest, bok := numericPrefix(b)
	if aok && bok {
		if an != bn {
			return an < bn
		}
		return arest < brest
	}
	if aok != bok {
		return aok
	}
	return a < b
}

func numericPrefix(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}

// restoreBuilder accumulates a ruleset in iptables-restore format:
//
//	*filter
//	:INPUT ACCEPT [0:0]
//	:ssh_guard - [0:0]
//	-A INPUT -j ssh_guard
//	COMMIT
type restoreBuilder struct {
	buf bytes.Buffer
}

func (b *restoreBuilder) writeComment(text string) {
	b.line("# " + text)
}

func (b *restoreBuilder) startTable(name string) {
	b.line("*" + name)
}

func (b *restoreBuilder) writeChainPolicy(chain, policy string) {
	b.line(fmt.Sprintf(":%s %s [0:0]", chain, policy))
}

func (b *restoreBuilder) writeChain(chain string) {
	b.line(fmt.Sprintf(":%s - [0:0]", chain))
}

func (b *restoreBuilder) writeRule(rule string) {
	b.line(rule)
}

func (b *restoreBuilder) endTable() {
	b.line("COMMIT")
}

func (b *restoreBuilder) line(s string) {
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
}

func (b *restoreBuilder) bytes() []byte {
	return b.buf.Bytes()
}
