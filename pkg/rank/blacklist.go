package rank

// defaultNoise lists commands too common to be worth ranking: bare
// navigation and listing, plus this tool's own invocation.
var defaultNoise = []string{
	"ls", "pwd", "cd", "cd ..", "histrank", "mc",
}

// Blacklist is an exact-match set of commands excluded from ranking.
// Every entry also matches itself with one trailing space appended,
// since shells record those as distinct history lines.
type Blacklist struct {
	set map[string]struct{}
}

// NewBlacklist builds the builtin noise set extended with extra
// user-configured commands.
func NewBlacklist(extra ...string) *Blacklist {
	bl := &Blacklist{
		set: make(map[string]struct{}, 2*(len(defaultNoise)+len(extra))),
	}
	for _, cmd := range defaultNoise {
		bl.add(cmd)
	}
	for _, cmd := range extra {
		bl.add(cmd)
	}
	return bl
}

func (b *Blacklist) add(cmd string) {
	if cmd == "" {
		return
	}
	b.set[cmd] = struct{}{}
	b.set[cmd+" "] = struct{}{}
}

// Contains reports whether cmd is blacklisted.
func (b *Blacklist) Contains(cmd string) bool {
	_, ok := b.set[cmd]
	return ok
}

// Len returns the number of match keys, trailing-space variants included.
func (b *Blacklist) Len() int {
	return len(b.set)
}
