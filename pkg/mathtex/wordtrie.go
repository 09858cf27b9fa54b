package mathtex

// wordTrie stores values keyed by word sequences and supports longest-prefix
// matching, which is what idiom lookup needs: "area of a circle" must win
// over a hypothetical shorter entry "area".
type wordTrie[T any] struct {
	children map[string]*wordTrie[T]
	set      bool
	value    T
}

func newWordTrie[T any]() *wordTrie[T] {
	return &wordTrie[T]{}
}

// put stores value under the given word sequence, overwriting any existing
// entry.
func (t *wordTrie[T]) put(words []string, value T) {
	node := t
	for _, w := range words {
		if node.children == nil {
			node.children = make(map[string]*wordTrie[T])
		}
		child, ok := node.children[w]
		if !ok {
			child = &wordTrie[T]{}
			node.children[w] = child
		}
		node = child
	}
	node.set = true
	node.value = value
}

// longestMatch walks words from the start and returns the value of the
// longest stored sequence that prefixes it, along with the number of words
// consumed. ok is false when no stored sequence matches.
func (t *wordTrie[T]) longestMatch(words []string) (value T, n int, ok bool) {
	node := t
	for i, w := range words {
		child, found := node.children[w]
		if !found {
			break
		}
		node = child
		if node.set {
			value, n, ok = node.value, i+1, true
		}
	}
	return value, n, ok
}
