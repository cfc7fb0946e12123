package main

import (
	"flag"
	"fmt"
	"github.com/jypelle/solfeggio/internal/console"
	"github.com/jypelle/solfeggio/internal/frequency"
	"github.com/jypelle/solfeggio/internal/srv"
	"github.com/jypelle/solfeggio/internal/tone"
	"github.com/jypelle/solfeggio/internal/version"
	"github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"
)

const configSuffix = "solfeggio"

func main() {

	// Logger
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	mainCommand := filepath.Base(os.Args[0])

	// region Flags and Commands definition

	// Debug Mode
	debugMode := flag.Bool("d", false, "Enable debug mode")

	// Simulation Mode
	simulationMode := flag.Bool("s", false, "Enable simulation mode (no gpio/i2c, display written to a png file)")

	// User config dir
	defaultConfigDir := "./." + configSuffix
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		defaultConfigDir = filepath.Join(userConfigDir, configSuffix)
	}
	configDir := flag.String("c", defaultConfigDir, "Location of solfeggio config folder")

	// Usage
	flag.Usage = func() {
		fmt.Printf("\nUsage: %s [OPTIONS] [COMMAND]\n", mainCommand)
		fmt.Printf("\nA sacred frequency player\n")
		fmt.Printf("\nOptions:\n")
		flag.PrintDefaults()
		fmt.Printf("\nCommands:\n")
		fmt.Printf("  run       Run server\n")
		fmt.Printf("  console   Drive the player from an interactive shell\n")
		fmt.Printf("  analyze   Show chakra and closest prime of a frequency\n")
		fmt.Printf("  tone      Render a pure tone into a wav file\n")
		fmt.Printf("  version   Show the version number\n")
		fmt.Printf("\nRun '%s COMMAND --help' for more information on a command.\n", mainCommand)
	}

	// run command
	runCmd := flag.NewFlagSet("run", flag.ExitOnError)

	runCmd.Usage = func() {
		fmt.Printf("\nUsage: %s run\n", mainCommand)
		fmt.Printf("\nRun the server\n")
	}

	// console command
	consoleCmd := flag.NewFlagSet("console", flag.ExitOnError)

	consoleCmd.Usage = func() {
		fmt.Printf("\nUsage: %s console\n", mainCommand)
		fmt.Printf("\nDrive the player from an interactive shell\n")
	}

	// analyze command
	analyzeCmd := flag.NewFlagSet("analyze", flag.ExitOnError)
	tolerance := analyzeCmd.Float64("t", 0, "Round the frequency to the nearest multiple of this tolerance")

	analyzeCmd.Usage = func() {
		fmt.Printf("\nUsage: %s analyze [OPTIONS] FREQUENCY\n", mainCommand)
		fmt.Printf("\nShow chakra, color and closest prime of a frequency\n")
		fmt.Printf("\nOptions:\n")
		analyzeCmd.PrintDefaults()
	}

	// tone command
	toneCmd := flag.NewFlagSet("tone", flag.ExitOnError)
	toneFrequency := toneCmd.Float64("f", 528, "Frequency in Hz")
	toneBeat := toneCmd.Float64("b", 0, "Binaural beat in Hz added to the right channel")
	toneDuration := toneCmd.Duration("l", 5*time.Minute, "Length")
	toneSampleRate := toneCmd.Int("r", 44100, "Sample rate")
	toneAmplitude := toneCmd.Float64("a", 0.5, "Amplitude in [0, 1]")
	toneOutput := toneCmd.String("o", "", "Output wav file (default <frequency>hz.wav)")

	toneCmd.Usage = func() {
		fmt.Printf("\nUsage: %s tone [OPTIONS]\n", mainCommand)
		fmt.Printf("\nRender a pure tone into a wav file\n")
		fmt.Printf("\nOptions:\n")
		toneCmd.PrintDefaults()
	}

	// version command
	versionCmd := flag.NewFlagSet("version", flag.ExitOnError)

	versionCmd.Usage = func() {
		fmt.Printf("\nUsage: %s version\n", mainCommand)
		fmt.Printf("\nShow the version information\n")
	}

	// endregion

	// region Flags and Commands Parsing
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	switch flag.Arg(0) {
	case "run":
		parseNoArgument(runCmd, mainCommand)
	case "console":
		parseNoArgument(consoleCmd, mainCommand)
	case "analyze":
		analyzeCmd.Parse(flag.Args()[1:])
		if analyzeCmd.NArg() != 1 {
			fmt.Printf("\n\"%s %s\" requires exactly one frequency\n", mainCommand, flag.Arg(0))
			analyzeCmd.Usage()
			os.Exit(1)
		}
	case "tone":
		parseNoArgument(toneCmd, mainCommand)
	case "version":
		parseNoArgument(versionCmd, mainCommand)
	default:
		fmt.Printf("\n%s is not a solfeggio command\n", flag.Args()[0])
		flag.Usage()
		os.Exit(1)
	}
	// endregion

	if *debugMode {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
		logrus.Printf("Debug mode activated")
	}

	switch {
	case versionCmd.Parsed():
		fmt.Printf("Version %s\n", version.AppVersion.String())

	case analyzeCmd.Parsed():
		freq, err := strconv.ParseFloat(analyzeCmd.Arg(0), 64)
		if err != nil || !frequency.InRange(freq) {
			logrus.Fatalf("Invalid frequency %s", analyzeCmd.Arg(0))
		}
		fmt.Println(console.FormatAnalysis(frequency.AnalyzeFrequency(freq, *tolerance)))

	case toneCmd.Parsed():
		output := *toneOutput
		if output == "" {
			output = strconv.FormatFloat(*toneFrequency, 'f', -1, 64) + "hz.wav"
		}
		f, err := os.Create(output)
		if err != nil {
			logrus.Fatalf("Unable to create %s: %v", output, err)
		}
		err = tone.Render(f, tone.Tone{
			Frequency:  *toneFrequency,
			Beat:       *toneBeat,
			Duration:   *toneDuration,
			SampleRate: *toneSampleRate,
			Amplitude:  *toneAmplitude,
			Fade:       time.Second,
		})
		f.Close()
		if err != nil {
			os.Remove(output)
			logrus.Fatalf("Unable to render tone: %v", err)
		}
		logrus.Infof("Tone written to %s", output)

	case consoleCmd.Parsed():
		serverApp, err := srv.NewServerApp(*configDir, *debugMode, true)
		if err != nil {
			logrus.Fatalf("Unable to create solfeggio console: %v", err)
		}
		if err := serverApp.RunConsole(); err != nil {
			logrus.Fatalf("Console failed: %v", err)
		}

	case runCmd.Parsed():
		// Create solfeggio server
		serverApp, err := srv.NewServerApp(*configDir, *debugMode, *simulationMode)
		if err != nil {
			logrus.Fatalf("Unable to create solfeggio server: %v", err)
		}

		// Listen stop signal
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGABRT, syscall.SIGHUP, syscall.SIGUSR1)

		serverApp.Start()

		sig := <-ch
		logrus.Infof("Received signal: %v", sig)
		serverApp.Stop(sig == syscall.SIGUSR1)
	}

}

func parseNoArgument(cmd *flag.FlagSet, mainCommand string) {
	cmd.Parse(flag.Args()[1:])
	if cmd.NArg() > 0 {
		fmt.Printf("\n\"%s %s\" accepts no arguments\n", mainCommand, flag.Arg(0))
		cmd.Usage()
		os.Exit(1)
	}
}
