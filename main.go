package main

import "github.com/dealerlot/lotposter/cmd"

func main() {
	cmd.Execute()
}
