package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the FSK advertising packet receiver.
 *
 *		See src/fskrx_main.go for the options.
 *
 *---------------------------------------------------------------*/

import (
	"os"

	fskrx "github.com/doismellburning/fskrx/src"
)

func main() {
	os.Exit(fskrx.ReceiverMain(os.Args))
}
