// Command quadrl runs reinforcement learning agents on simulated
// quadcopter tasks
package main

import "github.com/samuelfneumann/quadrl/cli"

func main() {
	cli.Execute()
}
