package personalization

// minWinningCount is the count a category must exceed to be selected.
const minWinningCount = 1

// SelectWinner scans ids in configured order keeping a running maximum.
// Whenever a count reaches or passes the running maximum it becomes the new
// maximum, and the id is recorded as winner if its count exceeds one. Later
// ids therefore win ties above one. Returns false if no id qualifies.
func SelectWinner(ids []string, tally *Tally) (string, bool) {
	var (
		winner string
		found  bool
		best   int
	)

	for _, id := range ids {
		count := tally.Count(id)
		if best > count {
			continue
		}
		best = count
		if count > minWinningCount {
			winner = id
			found = true
		}
	}

	return winner, found
}
