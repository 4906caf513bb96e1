package service

// splitText cuts text into rune-bounded pieces of at most size runes,
// preferring to break just after the last space inside the window. With zero
// overlap the pieces partition the text contiguously; with overlap > 0
// consecutive pieces share up to overlap runes.
func splitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var out []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		cut := end
		for i := end - 1; i > start; i-- {
			if runes[i] == ' ' {
				cut = i + 1
				break
			}
		}
		out = append(out, string(runes[start:cut]))
		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return out
}
