package main

import (
	"resultsync-backend/cmd/resultsync/commands"
	"resultsync-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
