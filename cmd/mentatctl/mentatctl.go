package main

import (
	"github.com/mentatproj/mentat/internal/mentatctl/cmd"
	"github.com/mentatproj/mentat/internal/mentatctl/cmd/util"
)

func main() {
	util.CheckErr(cmd.NewMentatCtlCommand().Execute())
}
