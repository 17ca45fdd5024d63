package cmd

import "github.com/google/subcommands"

// Commands lists every subcommand of the application, in display order.
// A main package registers them all and executes the user-selected one.
var Commands = []subcommands.Command{
	&syncCmd{},
	&analyzeCmd{},
	&statusCmd{},
	&userCmd{},
	&apikeyCmd{},
	&regionsCmd{},
	&priceCmd{},
	&callCmd{},
	&topicCmd{},
	&assistCmd{},
}
