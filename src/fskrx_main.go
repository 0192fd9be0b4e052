package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the receiver.
 *
 * Inputs:	Command line arguments and optional settings file.
 *		See usage message for details.
 *
 * Outputs:	Decoded packets are written to stdout, and optionally
 *		to a log directory and any of the sinks.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"
)

func ReceiverMain(args []string) int {
	var flags = pflag.NewFlagSet(args[0], pflag.ContinueOnError)

	var configFileName = flags.StringP("config-file", "c", DefaultSettingsFile, "Settings file.  Missing is fine, defaults are used.")
	var saveSettings = flags.Bool("save", false, "Write the resulting settings back to the settings file.")
	var channel = flags.IntP("channel", "C", 0, "Channel number, carried on each packet.  0 - 15 have a known frequency.")
	var autoChannel = flags.BoolP("auto-channel", "A", false, "Hop between channels 37, 38 and 39.")
	var sortIndex = flags.IntP("sort", "S", 0, "Sort the device list: 0 hits, 1 dB, 2 time, 3 name.")
	var filter = flags.StringP("filter", "F", "", "Only show packets whose data hex or name contains this.")
	var logEnable = flags.BoolP("log", "L", false, "Save packets to log files.")
	var logDir = flags.StringP("log-dir", "l", "", "Directory name for log files.  Implies -L.")
	var logTimestamp = flags.String("log-timestamp", DefaultLogTimestamp, "'strftime' format for the log file name time stamp.")
	var logDaily = flags.Bool("log-daily", false, "Evaluate the log file name for every packet, e.g. with a date only time stamp.")
	var noName = flags.BoolP("no-name", "N", false, "Show device address rather than name in the device list.")
	var findFile = flags.StringP("find", "f", "", "File of search strings, one per line.  Matches are reported.")
	var hexDump = flags.BoolP("hex", "x", false, "Dump packet data in hexadecimal.")
	var syncHits = flags.BoolP("sync-hits", "y", false, "Also report every sync word found.")
	var tapsStr = flags.StringP("taps", "t", "", "Decimation filter: ble1m, blackman, rrc or pick.")
	var syncStr = flags.StringP("sync-word", "s", "", "Access address to search for.")
	var logLevel = flags.StringP("debug", "d", "info", "Log level: debug, info, warn, error.")
	var quiet = flags.BoolP("quiet", "q", false, "Don't print each packet, only the device list at the end.")
	var statsInterval = flags.IntP("stats-interval", "a", 0, "Sample statistics interval in seconds.  0 to disable.")
	var tcpAddr = flags.StringP("tcp", "T", "", "Serve packets to TCP clients on this address, e.g. :8002.")
	var dnssdName = flags.String("dns-sd", "", "Announce the TCP service with this DNS-SD name.  Default is 'fskrx on <host>'.")
	var noDNSSD = flags.Bool("no-dns-sd", false, "Don't announce the TCP service.")
	var enablePty = flags.BoolP("enable-ptty", "p", false, "Copy packets to a pseudo terminal.")
	var ptyLink = flags.String("ptty-link", DefaultPtySymlink, "Symlink to the pseudo terminal.  Empty for none.")
	var serialDev = flags.String("serial", "", "Copy packets to this serial port.")
	var serialBaud = flags.IntP("baud", "b", DefaultSerialSpeed, "Serial port speed.")
	var wsAddr = flags.StringP("websocket", "w", "", "Stream packets as JSON to websocket clients on this address, e.g. :8080.")
	var showVersion = flags.BoolP("version", "v", false, "Print version and exit.")
	var help = flags.BoolP("help", "h", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Receive and decode FSK advertising packets from raw IQ samples.\n", args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] file\n", args[0])
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "The file holds signed 8 bit I/Q pairs at 4 MHz.  - for stdin.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  fskrx-gen -N 5 -o x.c8 && %s x.c8\n", args[0])
	}

	if err := flags.Parse(args[1:]); err != nil {
		return 1
	}

	if *showVersion {
		printVersion(os.Stdout, args[0], false)
		return 0
	}

	if *help || flags.NArg() != 1 {
		flags.Usage()
		return 1
	}

	if err := SetLogLevel(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	/*
	 * Settings file first, then anything on the command line wins.
	 */

	var settings, settingsErr = LoadSettings(*configFileName)
	if settingsErr != nil {
		Logger.Error("Can't use settings file", "file", *configFileName, "err", settingsErr)
		return 1
	}

	if flags.Changed("channel") {
		settings.ChannelIndex = *channel
	}
	if flags.Changed("sort") {
		settings.SortIndex = *sortIndex
	}
	if flags.Changed("filter") {
		settings.Filter = *filter
	}
	if flags.Changed("log") {
		settings.Log = *logEnable
	}
	if flags.Changed("log-dir") {
		settings.LogDir = *logDir
		settings.Log = true
	}
	if flags.Changed("no-name") {
		settings.Name = !*noName
	}
	if flags.Changed("auto-channel") {
		settings.AutoChannel = *autoChannel
	}
	if flags.Changed("taps") {
		settings.Taps = *tapsStr
	}
	if flags.Changed("sync-hits") {
		settings.SyncHits = *syncHits
	}

	if err := settings.Validate(); err != nil {
		Logger.Error("Bad option", "err", err)
		return 1
	}

	if *saveSettings {
		if err := settings.Save(*configFileName); err != nil {
			Logger.Error("Can't save settings", "err", err)
			return 1
		}
		Logger.Info("Settings saved", "file", *configFileName)
	}

	var chanCfg = settings.ChannelConfig()
	if *syncStr != "" {
		var v, err = strconv.ParseUint(*syncStr, 0, 32)
		if err != nil {
			Logger.Error("Bad sync word", "value", *syncStr, "err", err)
			return 1
		}
		chanCfg.SyncWord = uint32(v)
	}

	if f := ChannelFrequency(chanCfg.Channel); f == InvalidFrequency {
		Logger.Warn("Channel has no known frequency", "channel", chanCfg.Channel, "err", ErrInvalidChannel)
	}

	/*
	 * Put the receiver together.
	 */

	var rx = NewReceiver(ReceiverConfig{ //nolint:exhaustruct
		Sort:          SortMode(settings.SortIndex),
		Filter:        settings.Filter,
		IncludeName:   settings.Name,
		HexDump:       *hexDump,
		Quiet:         *quiet,
		StatsInterval: time.Duration(*statsInterval) * time.Second,
		Lossless:      true,
	}, os.Stdout)
	defer rx.Close()

	if *findFile != "" {
		if err := rx.Watch.Load(*findFile); err != nil {
			Logger.Error("Can't load search file", "err", err)
			return 1
		}
		Logger.Info("Watching for devices", "file", rx.Watch.Path(), "entries", rx.Watch.Total())
	}

	if settings.Log {
		var l, err = NewPacketLog(settings.LogDir, *logTimestamp, *logDaily)
		if err != nil {
			Logger.Error("Can't log packets", "err", err)
			return 1
		}
		rx.Log = l
	}

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *tcpAddr != "" {
		var s, err = NewTCPSink(*tcpAddr)
		if err != nil {
			Logger.Error("TCP", "err", err)
			return 1
		}
		rx.Sinks = append(rx.Sinks, s)

		if !*noDNSSD {
			if err := AnnounceTCP(ctx, *dnssdName, s.Port()); err != nil {
				Logger.Warn("DNS-SD", "err", err)
			}
		}
	}

	if *enablePty {
		var s, err = NewPtySink(*ptyLink)
		if err != nil {
			Logger.Error("Pseudo terminal", "err", err)
			return 1
		}
		rx.Sinks = append(rx.Sinks, s)
	}

	if *serialDev != "" {
		var s, err = NewSerialSink(*serialDev, *serialBaud)
		if err != nil {
			Logger.Error("Serial port", "err", err)
			return 1
		}
		rx.Sinks = append(rx.Sinks, s)
	}

	if *wsAddr != "" {
		var s, err = NewWebsocketSink(*wsAddr)
		if err != nil {
			Logger.Error("Websocket", "err", err)
			return 1
		}
		rx.Sinks = append(rx.Sinks, s)
	}

	if err := rx.Configure(chanCfg); err != nil {
		Logger.Error("Bad channel configuration", "err", err)
		return 1
	}

	if settings.AutoChannel {
		var ac = NewAutoChannel(chanCfg, rx.Processor.OnConfigure)
		go ac.Run(ctx)
	}

	/*
	 * Input.
	 */

	var in io.Reader = os.Stdin
	if name := flags.Arg(0); name != "-" {
		var f, err = os.Open(name)
		if err != nil {
			Logger.Error("Can't open input", "err", err)
			return 1
		}
		defer f.Close()

		in = f
	}

	if err := rx.Run(ctx, NewCaptureReader(in)); err != nil {
		if errors.Is(err, ErrShortRead) {
			Logger.Warn("Input ended part way through a sample")
		} else {
			Logger.Error("Receive", "err", err)
			return 1
		}
	}

	if rx.Watch.Total() > 0 {
		fmt.Printf("Found %d of %d\n", rx.Watch.Found(), rx.Watch.Total())
	}

	if rx.Log != nil && rx.Log.Path() != "" {
		Logger.Info("Packets logged", "path", rx.Log.Path())
	}

	return 0
}
