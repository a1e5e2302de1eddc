package main

import (
	"github.com/tanpawarit/Chative-Travel-Concierge/cmd"
	_ "github.com/tanpawarit/Chative-Travel-Concierge/pkg/logger/autoload"
)

func main() {
	cmd.Execute()
}
