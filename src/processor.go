package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:   	Turn sample buffers into decoded packets.
 *
 * Description:	Called once per raw sample buffer:
 *
 *		(1) Apply any queued commands.
 *		(2) Peak power of the raw buffer, kept for the next packet.
 *		(3) Decimate to one sample per symbol and append to the
 *		    continuous symbol stream.
 *		(4) Run the parser until it needs more symbols.
 *
 *		Parser states:
 *
 *		Begin	- Slide the sync correlator one symbol at a time.
 *			  On a hit, go to Header at the first symbol after
 *			  the 32 bit access address.
 *
 *		Header	- Read 2 bytes.  PDU type and payload length.
 *
 *		Payload	- Read length + 3 (CRC) bytes, hand the packet to
 *			  the dispatcher, back to Begin.
 *
 *		A state that does not yet have the symbols it needs simply
 *		returns and tries again after the next buffer.  Nothing
 *		here blocks, and after the first buffer nothing allocates.
 *
 *---------------------------------------------------------------*/

type Stats struct {
	Buffers      uint64 // Buffers processed while configured.
	Unconfigured uint64 // Buffers ignored before the first configure.
	Symbols      uint64
	SyncHits     uint64
	LastSyncAt   uint64 // Stream position of the first access address bit.
	Packets      uint64 // Packets completed, whether or not queued.
	Deferrals    uint64 // Header/Payload waits for more symbols.
	Abandoned    uint64 // Parses dropped because their symbols were overwritten.
	Configures   uint64
	LastDB       int
}

const commandQueueSize = 16

const syncOnlyDataLen = 20

type Processor struct {
	cfg        ChannelConfig
	configured bool
	taps       TapTable

	decim  *Decimator
	dst    []Complex16
	stream *SymbolStream

	corr    *Correlator
	state   ParseState
	scan    uint64 // Next bit position for the correlator.
	cursor  uint64 // Next bit position for byte extraction.
	pending PendingPacket
	db      int

	out      *Dispatcher
	commands chan Command
	stats    Stats
}

func NewProcessor(out *Dispatcher) *Processor {
	Assert(out != nil)

	return &Processor{
		decim:    NewDecimator(TapsBLE1M.Taps(), DecimateFactor),
		stream:   NewSymbolStream(),
		corr:     NewCorrelator(SyncWordBLE),
		state:    StateBegin,
		db:       MinPowerDB,
		out:      out,
		commands: make(chan Command, commandQueueSize),
		taps:     TapsBLE1M,
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        Post
 *
 * Purpose:     Queue a command from any goroutine.
 *
 * Returns:	false if the command queue is full.
 *
 * Description:	Commands are applied at the start of the next Process
 *		call, never in the middle of a buffer.
 *
 *--------------------------------------------------------------------*/

func (p *Processor) Post(cmd Command) bool {
	select {
	case p.commands <- cmd:
		return true
	default:
		return false
	}
}

// OnConfigure queues a ConfigureCommand.
func (p *Processor) OnConfigure(cfg ChannelConfig) bool {
	return p.Post(ConfigureCommand{Config: cfg})
}

// Apply runs a command immediately.  Only from the goroutine calling Process.
func (p *Processor) Apply(cmd Command) {
	switch c := cmd.(type) {
	case ConfigureCommand:
		p.configure(c.Config)
	case ResetCommand:
		p.resetParse()
	}
}

func (p *Processor) drainCommands() {
	for {
		select {
		case cmd := <-p.commands:
			p.Apply(cmd)
		default:
			return
		}
	}
}

func (p *Processor) configure(cfg ChannelConfig) {
	if err := cfg.Validate(); err != nil {
		Logger.Error("Ignoring configuration", "err", err)
		return
	}

	cfg = cfg.withDefaults()

	if cfg.Decimation != p.decim.Factor() {
		p.decim = NewDecimator(cfg.Taps.Taps(), cfg.Decimation)
	} else if cfg.Taps != p.taps || !p.configured {
		p.decim.SetTaps(cfg.Taps.Taps())
	}
	p.taps = cfg.Taps

	if cfg.ResetFilter {
		p.decim.Reset()
	}

	if cfg.SyncWord != p.corr.Target() {
		p.corr.SetTarget(cfg.SyncWord)
	}

	p.cfg = cfg
	p.configured = true
	p.stats.Configures++
	p.resetParse()

	Logger.Info("Configured", "channel", cfg.Channel, "frequency", FormatFrequency(ChannelFrequency(cfg.Channel)),
		"taps", cfg.Taps, "sync", fmtHex32(cfg.SyncWord))
}

// resetParse goes back to Begin and forgets every symbol received so
// far, so no packet can be built from symbols on both sides of it.
func (p *Processor) resetParse() {
	p.stream.Discard()
	p.corr.Reset()
	p.pending.reset()
	p.state = StateBegin
	p.scan = p.stream.Head()
	p.cursor = p.scan
}

/*-------------------------------------------------------------------
 *
 * Name:        Process
 *
 * Purpose:     Entry point, once per raw sample buffer.
 *
 * Inputs:	raw	- Samples at the radio rate.  Not retained.
 *
 *--------------------------------------------------------------------*/

func (p *Processor) Process(raw []Complex8) {
	p.drainCommands()

	if !p.configured {
		p.stats.Unconfigured++
		return
	}

	p.stats.Buffers++

	p.db = PeakPowerDB(raw)
	p.stats.LastDB = p.db

	var n = p.decim.OutputLen(len(raw))
	if cap(p.dst) < n {
		p.dst = make([]Complex16, n)
	}
	n = p.decim.Execute(raw, p.dst[:n])

	p.processSymbols(p.dst[:n])
}

// processSymbols is Process after decimation.
func (p *Processor) processSymbols(syms []Complex16) {
	p.stream.Append(syms)
	p.stats.Symbols += uint64(len(syms))

	for {
		var advanced bool

		switch p.state {
		case StateBegin:
			advanced = p.handleBegin()
		case StateHeader:
			advanced = p.handleHeader()
		case StatePayload:
			advanced = p.handlePayload()
		}

		if !advanced {
			return
		}
	}
}

func (p *Processor) handleBegin() bool {
	if p.scan < p.stream.Tail() {
		p.scan = p.stream.Tail()
	}

	for p.stream.HasBits(p.scan, 1) {
		var pos = p.scan
		p.scan++

		if !p.corr.Push(p.stream.Bit(pos)) {
			continue
		}

		// pos is the last bit of the access address.
		var captured = p.corr.Captured()
		p.stats.SyncHits++
		p.stats.LastSyncAt = pos + 1 - SyncWordBits

		p.pending.reset()
		p.pending.seedFromSync(captured)
		p.cursor = pos + 1

		if debugEnabled() {
			Logger.Debug("Sync", "at", p.stats.LastSyncAt, "captured", fmtHex32(captured))
		}

		if p.cfg.ReportSyncHits && captured > 0xFF {
			p.sendSyncOnly()
		}

		p.state = StateHeader

		return true
	}

	return false
}

// readBytes extracts n bytes at the cursor into the pending packet.
// Returns false, with nothing changed, if the symbols are not here yet.
func (p *Processor) readBytes(n int) bool {
	if !p.stream.HasBits(p.cursor, 8*n) {
		p.stats.Deferrals++
		return false
	}

	for range n {
		p.pending.append(p.stream.Byte(p.cursor))
		p.cursor += 8
	}

	return true
}

// abandonIfStale gives up on a parse whose start has been pushed out of
// the symbol history.
func (p *Processor) abandonIfStale() bool {
	if p.cursor >= p.stream.Tail() {
		return false
	}

	p.stats.Abandoned++
	Logger.Warn("Abandoned packet, symbols overwritten", "state", p.state)
	p.toBegin()

	return true
}

func (p *Processor) handleHeader() bool {
	if p.abandonIfStale() {
		return true
	}

	if !p.readBytes(HeaderBytes) {
		return false
	}

	p.pending.setHeader()
	p.state = StatePayload

	return true
}

func (p *Processor) handlePayload() bool {
	if p.abandonIfStale() {
		return true
	}

	if !p.readBytes(p.pending.payloadBytes()) {
		return false
	}

	var pkt = p.pending.decode(p.db, p.cfg.Channel)
	p.stats.Packets++
	p.out.Send(pkt)

	p.toBegin()

	return true
}

// toBegin starts a fresh sync search right after the current packet.
func (p *Processor) toBegin() {
	p.pending.reset()
	p.corr.Reset()
	p.state = StateBegin
	p.scan = p.cursor
}

func (p *Processor) sendSyncOnly() {
	var pkt DecodedPacket

	pkt.SyncOnly = true
	pkt.DeviceID = p.pending.deviceID
	pkt.Type = 0
	pkt.Size = 31

	// Filler payload, so displays that expect data have some.
	pkt.DataLen = syncOnlyDataLen
	for i := range syncOnlyDataLen {
		pkt.Data[i] = 0x01
	}

	pkt.DB = p.db
	pkt.Channel = p.cfg.Channel

	p.out.Send(pkt)
}

func (p *Processor) State() ParseState {
	return p.state
}

func (p *Processor) Configured() bool {
	return p.configured
}

func (p *Processor) Config() ChannelConfig {
	return p.cfg
}

// Stats is only safe to call from the goroutine calling Process, or
// after it has finished.
func (p *Processor) Stats() Stats {
	return p.stats
}

// Comparisons is the number of sync bit compares so far.
func (p *Processor) Comparisons() uint64 {
	return p.corr.Comparisons()
}
