package main

import "github.com/smdabdoub/ClusterDistribute/cmd"

func main() {
	cmd.Execute()
}
