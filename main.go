package main

import "github.com/utsavrajji/FixMyArea-sub000/cmd"

func main() {
	cmd.Execute()
}
