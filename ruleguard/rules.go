package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// errors.New(fmt.Sprintf(...)) is fmt.Errorf with extra steps
	m.Match(`errors.New(fmt.Sprintf($*args))`).
		Report(`use fmt.Errorf instead of errors.New(fmt.Sprintf(...))`).
		Suggest(`fmt.Errorf($args)`)

	// time.Now().Sub(x) reads worse than time.Since(x)
	m.Match(`time.Now().Sub($x)`).
		Report(`use time.Since instead of time.Now().Sub`).
		Suggest(`time.Since($x)`)

	// strings.Replace with -1 is strings.ReplaceAll
	m.Match(`strings.Replace($s, $old, $new, -1)`).
		Report(`use strings.ReplaceAll`).
		Suggest(`strings.ReplaceAll($s, $old, $new)`)
}

func transport(m dsl.Matcher) {
	// The transport layer converts failures to text; a Go error crossing a
	// tool handler boundary means someone bypassed the primitives.
	m.Match(`http.Get($url)`, `http.Post($url, $*_)`).
		Report(`issue plugin requests through internal/ghidra.Client, not net/http directly`)
}
