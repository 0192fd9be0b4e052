package fskrx

import (
	"errors"
	"fmt"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Control messages for the processor.
 *
 * Description:	A closed set.  Only types in this file implement
 *		Command and the processor switches on them.
 *
 *------------------------------------------------------------------*/

type Command interface {
	isCommand()
}

// ChannelConfig is the configuration message.
type ChannelConfig struct {
	// Channel is the channel / deviation selector.  It is carried on
	// every decoded packet; the core does not interpret it further.
	Channel int

	// Taps selects the decimation filter.
	Taps TapTable

	// Decimation is the raw samples per symbol.  0 means DecimateFactor.
	Decimation int

	// SyncWord to search for.  0 means SyncWordBLE.
	SyncWord uint32

	// ResetFilter clears the decimator history too.
	ResetFilter bool

	// ReportSyncHits also queues a SyncOnly packet at each sync.
	ReportSyncHits bool
}

var ErrInvalidDecimation = errors.New("invalid decimation")

func (c ChannelConfig) withDefaults() ChannelConfig {
	if c.Decimation == 0 {
		c.Decimation = DecimateFactor
	}
	if c.SyncWord == 0 {
		c.SyncWord = SyncWordBLE
	}

	return c
}

// Validate checks what can be checked before the config reaches the core.
func (c ChannelConfig) Validate() error {
	c = c.withDefaults()
	if c.Decimation < 1 || c.Decimation > 64 {
		return fmt.Errorf("%w: %d", ErrInvalidDecimation, c.Decimation)
	}

	return nil
}

// ConfigureCommand retunes and forces the parser back to Begin.
type ConfigureCommand struct {
	Config ChannelConfig
}

// ResetCommand abandons any parse in progress.
type ResetCommand struct{}

func (ConfigureCommand) isCommand() {}
func (ResetCommand) isCommand()     {}
