package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/ops"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/resolver"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/session"
)

const playHelp = `  1-9        take a choice
  s [slot]   save
  r          restart the episode
  t          show tapes
  q          quit`

// player drives a session from line-oriented input.
type player struct {
	env  *ops.Env
	sess *session.Session
	in   io.Reader
	out  io.Writer
}

// run shows d and reads commands until quit or end of input.
// Engine errors from a command are printed and play continues.
func (p *player) run(d session.Display) error {
	p.header(d)
	p.show(d)

	scanner := bufio.NewScanner(p.in)
	for {
		fmt.Fprint(p.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(p.out)
			return scanner.Err()
		}

		quit, err := p.command(strings.TrimSpace(scanner.Text()))
		if err != nil {
			var engErr *errors.EngineError
			if !stderrors.As(err, &engErr) {
				return err
			}
			fmt.Fprintf(p.out, "[%s] %s\n", engErr.Code, engErr.Message)
		}
		if quit {
			return nil
		}
	}
}

func (p *player) command(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return true, nil

	case "?", "h", "help":
		fmt.Fprintln(p.out, playHelp)

	case "s", "save":
		slot := 0
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return false, errors.NewInvalidRequest(fmt.Sprintf("invalid slot %q", fields[1]))
			}
			slot = n
		}
		out, err := ops.Save(p.env, p.sess, slot)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(p.out, "Saved to slot %d: %s\n", out.Slot, out.Preview)

	case "r", "restart":
		if err := p.sess.Restart(); err != nil {
			return false, err
		}
		p.show(p.sess.Current())

	case "t", "tapes":
		out, err := ops.ListTapes(p.env, p.sess)
		if err != nil {
			return false, err
		}
		for _, t := range out.Tapes {
			mark := "  "
			if t.Unlocked {
				mark = "♪ "
			}
			fmt.Fprintf(p.out, "%s%s by %s\n", mark, t.Title, t.Artist)
		}

	default:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return false, errors.NewInvalidRequest(fmt.Sprintf("unknown command %q (? for help)", fields[0]))
		}
		t, err := ops.Choose(p.env, p.sess, n-1)
		if err != nil {
			return false, err
		}
		p.effects(t.SideEffects)
		p.show(t.Display)
	}
	return false, nil
}

func (p *player) header(d session.Display) {
	if d.EpisodeTitle != "" {
		fmt.Fprintf(p.out, "== Episode %d: %s ==\n", d.EpisodeNumber, d.EpisodeTitle)
	} else {
		fmt.Fprintf(p.out, "== Episode %d ==\n", d.EpisodeNumber)
	}
	if intro := d.ChapterIntro; intro != nil {
		fmt.Fprintf(p.out, "Chapter %d: %s\n", intro.Number, intro.Title)
	}
}

func (p *player) show(d session.Display) {
	fmt.Fprintln(p.out)
	if ev := d.Event; ev != nil {
		if ev.Location != "" {
			fmt.Fprintf(p.out, "[%s]\n", ev.Location)
		}
		fmt.Fprintln(p.out, ev.Text)
		fmt.Fprintln(p.out)
	}

	status := fmt.Sprintf("Physical %d  Mental %d", d.Stats.Physical, d.Stats.Mental)
	if len(d.Inventory.Items) > 0 {
		status += "  | Items: " + strings.Join(d.Inventory.Items, ", ")
	}
	if len(d.Inventory.Tapes) > 0 {
		status += "  | Tapes: " + strings.Join(d.Inventory.Tapes, ", ")
	}
	fmt.Fprintln(p.out, status)

	if d.Phase == session.Ended {
		fmt.Fprintln(p.out, "*** The End ***  (r: restart, q: quit)")
		return
	}
	for _, c := range d.Choices {
		fmt.Fprintf(p.out, "  %d) %s\n", c.Index+1, c.Text)
	}
}

func (p *player) effects(fx []resolver.SideEffect) {
	for _, e := range fx {
		switch e.Kind {
		case resolver.UnlockTape:
			fmt.Fprintf(p.out, "♪ Tape unlocked: %s\n", e.Target)
		case resolver.ItemLost:
			fmt.Fprintf(p.out, "Lost: %s\n", e.Target)
		case resolver.ConsequenceApplied:
			fmt.Fprintf(p.out, "(%s %+d)\n", e.Target, e.Value)
		}
	}
}
