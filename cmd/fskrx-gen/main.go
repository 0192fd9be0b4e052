package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Generate a raw IQ capture of advertising packets, for
 *		testing the receiver without a radio.
 *
 *---------------------------------------------------------------*/

import (
	"os"

	fskrx "github.com/doismellburning/fskrx/src"
)

func main() {
	os.Exit(fskrx.GenPacketsMain(os.Args))
}
