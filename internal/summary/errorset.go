package summary

// Category classifies a non-fatal error for deduplication.
type Category string

const (
	CategoryLocation  Category = "location"
	CategoryPrivilege Category = "privilege"
	CategoryDelete    Category = "delete"
	CategoryPlan      Category = "plan"
	CategoryLogDir    Category = "log-dir"
	CategoryLogWrite  Category = "log-write"
	CategoryCancelled Category = "cancelled"
)

type errorKey struct {
	category Category
	target   string
}

// ErrorSet is an insertion-ordered set of error messages keyed by
// (category, target). The first message recorded for a key wins.
type ErrorSet struct {
	seen     map[errorKey]struct{}
	messages []string
}

// NewErrorSet creates an empty ErrorSet.
func NewErrorSet() *ErrorSet {
	return &ErrorSet{seen: make(map[errorKey]struct{})}
}

// Add records msg unless an entry with the same category and target
// exists. It reports whether the message was added.
func (s *ErrorSet) Add(category Category, target, msg string) bool {
	if s.Has(category, target) {
		return false
	}
	s.seen[errorKey{category: category, target: target}] = struct{}{}
	s.messages = append(s.messages, msg)
	return true
}

// Has reports whether an entry exists for the key.
func (s *ErrorSet) Has(category Category, target string) bool {
	_, ok := s.seen[errorKey{category: category, target: target}]
	return ok
}

// Messages returns a copy of the messages in insertion order.
func (s *ErrorSet) Messages() []string {
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}
