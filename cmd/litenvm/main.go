package main

import (
	"go.brendoncarroll.net/star"

	"litenvm.org/litenvm/lvmcmd"
)

func main() {
	star.Main(lvmcmd.Root())
}
