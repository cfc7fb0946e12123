package console

import (
	"context"
	"errors"
	"fmt"
	"github.com/chzyer/readline"
	"github.com/jypelle/solfeggio/internal/frequency"
	"github.com/jypelle/solfeggio/internal/player"
	"github.com/jypelle/solfeggio/internal/srv/catalog"
	"github.com/sirupsen/logrus"
	"io"
	"strconv"
	"strings"
	"time"
)

var ErrQuit = errors.New("quit")

// Console is an interactive shell driving a local player.
type Console struct {
	player      *player.Player
	catalog     *catalog.Catalog
	out         io.Writer
	playTimeout time.Duration
	disposers   []player.Disposer
}

func NewConsole(p *player.Player, c *catalog.Catalog, out io.Writer, playTimeout time.Duration) *Console {
	console := &Console{
		player:      p,
		catalog:     c,
		out:         out,
		playTimeout: playTimeout,
	}
	console.disposers = append(console.disposers,
		p.RegisterVisual(player.VisualRegistrationFunc(func(url string, info player.PlayerInfo) {
			fmt.Fprintf(console.out, "Now playing %s\n", describe(info))
		})),
		p.RegisterPrime(func(prime int64) {
			fmt.Fprintf(console.out, "Prime frequency %d Hz (%s)\n", prime, frequency.FrequencyToChakra(float64(prime)))
		}),
	)
	return console
}

// Close removes the console registrations from the player.
func (c *Console) Close() {
	for _, dispose := range c.disposers {
		dispose()
	}
	c.disposers = nil
}

// Run reads commands until quit or end of input.
func (c *Console) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "solfeggio> ",
		AutoComplete:    c.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          c.out,
	})
	if err != nil {
		return fmt.Errorf("Unable to open console: %v", err)
	}
	defer rl.Close()

	fmt.Fprintln(c.out, "Type help for the list of commands")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if line == "" {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if err := c.Execute(line); err == ErrQuit {
			return nil
		} else if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
	}
}

func (c *Console) completer() *readline.PrefixCompleter {
	journeyIds := readline.PcItemDynamic(func(string) []string {
		var ids []string
		for _, journey := range c.catalog.Journeys() {
			ids = append(ids, journey.Id)
		}
		return ids
	})
	return readline.NewPrefixCompleter(
		readline.PcItem("play", journeyIds),
		readline.PcItem("tone"),
		readline.PcItem("toggle"),
		readline.PcItem("next"),
		readline.PcItem("previous"),
		readline.PcItem("seek"),
		readline.PcItem("volume"),
		readline.PcItem("reset"),
		readline.PcItem("state"),
		readline.PcItem("list"),
		readline.PcItem("analyze"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Execute runs one command line. It returns ErrQuit on quit.
func (c *Console) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	command, args := fields[0], fields[1:]
	logrus.Debugf("Console command %s %v", command, args)

	switch command {
	case "play":
		if len(args) != 1 {
			return errors.New("usage: play <journey id>")
		}
		journey, err := c.catalog.Journey(args[0])
		if err != nil {
			return err
		}
		return c.play(journey)
	case "tone":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: tone <frequency> [seconds]")
		}
		freq, err := parsePositive(args[0])
		if err != nil {
			return err
		}
		source := catalog.ToneSource(freq)
		if len(args) == 2 {
			seconds, err := parsePositive(args[1])
			if err != nil {
				return err
			}
			source += "?duration=" + strconv.FormatFloat(seconds, 'f', -1, 64)
		}
		return c.play(player.PlayerInfo{
			Title:     args[0] + " Hz",
			Source:    source,
			Chakra:    frequency.FrequencyToChakra(freq),
			Frequency: freq,
		})
	case "next", "previous":
		currentId := ""
		if currentAudio := c.player.State().CurrentAudio; currentAudio != nil {
			currentId = currentAudio.Id
		}
		step := c.catalog.Next
		if command == "previous" {
			step = c.catalog.Previous
		}
		journey, ok := step(currentId)
		if !ok {
			return errors.New("Catalog is empty")
		}
		return c.play(journey)
	case "toggle":
		ctx, cancel := context.WithTimeout(context.Background(), c.playTimeout)
		defer cancel()
		c.player.TogglePlayPause(ctx)
		c.printState()
	case "seek":
		if len(args) != 1 {
			return errors.New("usage: seek <seconds>")
		}
		seconds, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("Invalid seconds %s", args[0])
		}
		c.player.SeekTo(seconds)
	case "volume":
		if len(args) == 0 {
			fmt.Fprintf(c.out, "Volume %.2f\n", c.player.GetVolume())
			return nil
		}
		volume, err := strconv.ParseFloat(args[0], 64)
		if err != nil || volume < 0 || volume > 1 {
			return fmt.Errorf("Invalid volume %s, expected a value in [0, 1]", args[0])
		}
		c.player.SetVolume(volume)
	case "reset":
		c.player.ResetPlayer()
	case "state":
		c.printState()
	case "list":
		for _, journey := range c.catalog.Journeys() {
			fmt.Fprintf(c.out, "%-24s %s\n", journey.Id, describe(journey))
		}
	case "analyze":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: analyze <frequency> [tolerance]")
		}
		freq, err := strconv.ParseFloat(args[0], 64)
		if err != nil || !frequency.InRange(freq) {
			return fmt.Errorf("Invalid frequency %s", args[0])
		}
		tolerance := 0.0
		if len(args) == 2 {
			if tolerance, err = strconv.ParseFloat(args[1], 64); err != nil {
				return fmt.Errorf("Invalid tolerance %s", args[1])
			}
		}
		fmt.Fprintln(c.out, FormatAnalysis(frequency.AnalyzeFrequency(freq, tolerance)))
	case "help":
		fmt.Fprint(c.out, help)
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("Unknown command %s, type help", command)
	}
	return nil
}

func (c *Console) play(journey player.PlayerInfo) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.playTimeout)
	defer cancel()

	c.player.PlayAudio(ctx, journey)
	state := c.player.State()
	if !state.IsPlaying || state.CurrentAudio == nil || state.CurrentAudio.Source != journey.Source {
		return fmt.Errorf("Unable to play %s", journey.Source)
	}
	return nil
}

func (c *Console) printState() {
	state := c.player.State()
	current := "-"
	if state.CurrentAudio != nil {
		current = describe(*state.CurrentAudio)
	}
	fmt.Fprintf(c.out, "%s %s %.0f/%.0fs volume %.2f\n", state.Status(), current, state.CurrentTime, state.Duration, state.Volume)
}

// FormatAnalysis renders an analysis on one line.
func FormatAnalysis(a frequency.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v Hz", a.Rounded)
	if a.IsPrime {
		sb.WriteString(" is prime")
	} else if a.ClosestPrime != nil {
		fmt.Fprintf(&sb, " closest prime %d (distance %d)", *a.ClosestPrime, *a.Distance)
	} else {
		sb.WriteString(" has no prime nearby")
	}
	fmt.Fprintf(&sb, ", %s chakra %s", a.Chakra, a.Color)
	return sb.String()
}

func describe(info player.PlayerInfo) string {
	desc := info.Title
	if desc == "" {
		desc = info.Source
	}
	if info.Artist != "" {
		desc = info.Artist + " - " + desc
	}
	if info.Frequency > 0 {
		desc += fmt.Sprintf(" [%v Hz %s]", info.Frequency, info.Chakra)
	}
	return desc
}

func parsePositive(s string) (float64, error) {
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("Invalid value %s, expected a positive number", s)
	}
	return value, nil
}

const help = `Commands:
  play <journey id>          Play a journey of the catalog
  tone <frequency> [seconds] Play a pure tone
  next, previous             Play the next or previous journey
  toggle                     Pause or resume
  seek <seconds>             Move in the current journey
  volume [0..1]              Show or set the volume
  reset                      Stop and forget the current journey
  state                      Show the player state
  list                       List the catalog
  analyze <freq> [tolerance] Chakra and closest prime of a frequency
  quit                       Leave the console
`
