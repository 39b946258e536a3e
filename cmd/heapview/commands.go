package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	wasmheap "github.com/wippyai/wasm-heap"
	"github.com/wippyai/wasm-heap/coerce"
	"github.com/wippyai/wasm-heap/heap"
	"github.com/wippyai/wasm-heap/kind"
	"github.com/wippyai/wasm-heap/typed"
)

const helpText = `commands:
  alloc <kind> <n>             allocate n elements (kinds: u8 s8 u16 s16 u32 s32 u64 s64 f32 f64)
  free <ref>                   free an owner; views are no-ops
  fill <ref> <value>           fill every element
  set <ref> <v,...> [action]   coerce values in (action: warn, none, error)
  view <ref> <start> <end>     derive a view, named v<n>
  show <ref>                   print a handle and its elements
  subset <ref> <i,...>         copy the listed positions into a new owner
  keep <ref> <0|1,...>         copy positions whose mask entry is non-zero
  live                         list live allocations in the space
  events                       print the allocation event log
  help                         show this text`

// maxShown caps the elements printed by show.
const maxShown = 32

// session is one heap space plus the handles created by commands. Owners are
// referenced by allocation id, views by "v" and a sequence number.
type session struct {
	reg     *heap.Registry
	log     *zap.Logger
	closer  func() error
	handles map[string]*heap.Array
	events  []heap.Event
	space   heap.SpaceID
	views   int
}

func newSession(m wasmheap.Module, log *zap.Logger, closer func() error) *session {
	s := &session{
		reg:     heap.New(heap.Options{Logger: log}),
		log:     log,
		closer:  closer,
		handles: make(map[string]*heap.Array),
	}
	s.space = s.reg.Register(m)
	s.reg.Subscribe(s)
	return s
}

func (s *session) OnHeapEvent(e heap.Event) {
	s.events = append(s.events, e)
}

// Close frees every owner the session still holds and closes the module.
func (s *session) Close() error {
	for _, ref := range slices.Sorted(maps.Keys(s.handles)) {
		s.handles[ref].Free()
	}
	s.handles = map[string]*heap.Array{}
	var err error
	if s.closer != nil {
		err = multierr.Append(err, s.closer())
	}
	return err
}

// script runs commands separated by ';' or newlines and stops at the first
// failure.
func (s *session) script(src string) (string, error) {
	var out []string
	for _, line := range strings.FieldsFunc(src, func(r rune) bool { return r == ';' || r == '\n' }) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		res, err := s.exec(line)
		if err != nil {
			return strings.Join(out, "\n"), fmt.Errorf("%s: %w", strings.TrimSpace(line), err)
		}
		if res != "" {
			out = append(out, res)
		}
	}
	return strings.Join(out, "\n"), nil
}

// exec runs one command line and returns its plain-text output.
func (s *session) exec(line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", nil
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "help":
		return helpText, nil
	case "alloc":
		return s.alloc(args)
	case "free":
		return s.free(args)
	case "fill":
		return s.fill(args)
	case "set":
		return s.set(args)
	case "view":
		return s.view(args)
	case "show":
		return s.show(args)
	case "subset", "keep":
		return s.subset(cmd, args)
	case "live":
		return s.live(), nil
	case "events":
		return s.eventLog(), nil
	}
	return "", fmt.Errorf("unknown command %q (try help)", cmd)
}

func (s *session) alloc(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: alloc <kind> <n>")
	}
	k, err := kind.Parse(args[0])
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("bad length %q", args[1])
	}
	arr, err := s.reg.Allocate(s.space, n, k)
	if err != nil {
		return "", err
	}
	return s.keep(strconv.Itoa(arr.ID()), arr), nil
}

func (s *session) keep(ref string, arr *heap.Array) string {
	s.handles[ref] = arr
	return ref + " = " + arr.String()
}

func (s *session) lookup(ref string) (*heap.Array, error) {
	arr, ok := s.handles[ref]
	if !ok {
		return nil, fmt.Errorf("no handle %q", ref)
	}
	return arr, nil
}

func (s *session) free(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: free <ref>")
	}
	arr, err := s.lookup(args[0])
	if err != nil {
		return "", err
	}
	arr.Free()
	if arr.Owner().Self() {
		delete(s.handles, args[0])
	}
	return arr.String(), nil
}

func (s *session) fill(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: fill <ref> <value>")
	}
	arr, err := s.lookup(args[0])
	if err != nil {
		return "", err
	}
	v, err := parseNumber(args[1])
	if err != nil {
		return "", err
	}
	if err := arr.Fill(v, 0, arr.Len()); err != nil {
		return "", err
	}
	return render(arr), nil
}

func (s *session) set(args []string) (string, error) {
	if len(args) < 2 || len(args) > 3 {
		return "", fmt.Errorf("usage: set <ref> <v,...> [action]")
	}
	arr, err := s.lookup(args[0])
	if err != nil {
		return "", err
	}
	vals, err := parseList(args[1])
	if err != nil {
		return "", err
	}
	opts := coerce.Options{Logger: s.log}
	if len(args) == 3 {
		if opts.Action, err = coerce.ParseAction(args[2]); err != nil {
			return "", err
		}
	}
	res, err := arr.SafeSet(vals, opts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\npath=%s replaced=%d", render(arr), res.Path, res.Replaced), nil
}

func (s *session) view(args []string) (string, error) {
	if len(args) != 3 {
		return "", fmt.Errorf("usage: view <ref> <start> <end>")
	}
	arr, err := s.lookup(args[0])
	if err != nil {
		return "", err
	}
	start, err1 := strconv.Atoi(args[1])
	end, err2 := strconv.Atoi(args[2])
	if err := multierr.Combine(err1, err2); err != nil {
		return "", fmt.Errorf("bad range: %w", err)
	}
	v, err := arr.View(start, end)
	if err != nil {
		return "", err
	}
	ref := "v" + strconv.Itoa(s.views)
	s.views++
	return s.keep(ref, v), nil
}

func (s *session) show(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: show <ref>")
	}
	arr, err := s.lookup(args[0])
	if err != nil {
		return "", err
	}
	return arr.String() + "\n" + render(arr), nil
}

func (s *session) subset(cmd string, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: %s <ref> <list>", cmd)
	}
	arr, err := s.lookup(args[0])
	if err != nil {
		return "", err
	}
	vals, err := parseList(args[1])
	if err != nil {
		return "", err
	}

	var sel heap.Selection
	if cmd == "keep" {
		sel = heap.Keep(heap.MaskOf(typed.Of(toFloats(vals))))
	} else {
		idx := make([]int, len(vals))
		for i, v := range vals {
			n, ok := v.(int64)
			if !ok {
				return "", fmt.Errorf("index %v is not an integer", v)
			}
			idx[i] = int(n)
		}
		sel = heap.Indices(idx...)
	}

	out, err := arr.Subset(sel, nil)
	if err != nil {
		return "", err
	}
	return s.keep(strconv.Itoa(out.ID()), out) + "\n" + render(out), nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func (s *session) live() string {
	sp, err := s.reg.Space(s.space)
	if err != nil {
		return err.Error()
	}
	live := sp.Live()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("id", "offset", "kind", "len").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, id := range slices.Sorted(maps.Keys(live)) {
		k, n := "?", "?"
		if arr, ok := s.handles[strconv.Itoa(id)]; ok {
			k, n = arr.Kind().String(), strconv.Itoa(arr.Len())
		}
		t.Row(strconv.Itoa(id), strconv.FormatUint(uint64(live[id]), 10), k, n)
	}
	return fmt.Sprintf("%s\n%d live, next id %d", t.Render(), len(live), sp.NextID())
}

func (s *session) eventLog() string {
	var b strings.Builder
	for i, e := range s.events {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-9s id=%d offset=%d size=%d kind=%s", e.Type, e.ID, e.Offset, e.Size, e.Kind)
	}
	return b.String()
}

// render prints up to maxShown elements of arr.
func render(arr *heap.Array) string {
	el := arr.Elements()
	parts := make([]string, 0, min(el.Len(), maxShown)+1)
	for i, v := range typed.All(el) {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("... %d more", el.Len()-maxShown))
			break
		}
		parts = append(parts, v.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// parseNumber reads an integer when it can and a float otherwise. Integers
// past int64 are read as uint64.
func parseNumber(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(s, 0, 64); err == nil {
		return u, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("bad number %q", s)
	}
	return f, nil
}

func parseList(s string) ([]any, error) {
	var vals []any
	var errs error
	for _, field := range strings.Split(s, ",") {
		if field == "" {
			continue
		}
		v, err := parseNumber(field)
		errs = multierr.Append(errs, err)
		vals = append(vals, v)
	}
	return vals, errs
}

func toFloats(vals []any) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if n, ok := typed.ValueOf(v); ok {
			out[i] = n.Float()
		}
	}
	return out
}
