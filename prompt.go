package lvrebal

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Asker prompts the operator and returns the raw answer line. An io.EOF
// error means the input source is exhausted.
type Asker func(prompt string) (string, error)

// TerminalAsker returns an Asker that writes prompts to out and reads
// answers line by line from in.
func TerminalAsker(in io.Reader, out io.Writer) Asker {
	scanner := bufio.NewScanner(in)

	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}

			return "", io.EOF
		}

		return scanner.Text(), nil
	}
}

// Answers returns an Asker that replays the given answers in order, for use
// without a terminal. Once exhausted it returns io.EOF.
func Answers(answers ...string) Asker {
	i := 0

	return func(prompt string) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}

		a := answers[i]
		i++

		return a, nil
	}
}

// Confirm asks a yes/no question. Only an explicit "y" or "yes" confirms;
// an empty answer, EOF, or anything else is no. Destructive steps must never
// proceed on an accidental newline.
func Confirm(ask Asker, prompt string) bool {
	if ask == nil {
		return false
	}

	answer, err := ask(prompt + " [y/N]: ")
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}

	return false
}

// ChooseLV presents the volumes as a numbered list and returns the chosen
// one. An empty answer, EOF, or an out-of-range number returns
// ErrNoSelection: the run aborts rather than re-prompting, since a
// half-informed retry risks picking the same volume for both roles.
func ChooseLV(ask Asker, out io.Writer, lvs LVSet, prompt string) (LV, error) {
	if len(lvs) == 0 {
		return LV{}, ErrNoSelection
	}

	sorted := lvs.Sorted()

	fmt.Fprintln(out, prompt)

	for i, lv := range sorted {
		fmt.Fprintf(out, "  %2d) %-24s %10s %s\n",
			i+1, lv.FullName(), HumanSize(lv.Size), lv.FSType)
	}

	answer, err := ask("volume number: ")
	if err != nil {
		return LV{}, ErrNoSelection
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return LV{}, ErrNoSelection
	}

	num, err := strconv.Atoi(answer)
	if err != nil || num < 1 || num > len(sorted) {
		return LV{}, ErrNoSelection
	}

	return sorted[num-1], nil
}
