/*
Copyright © 2026 JACOB ARTHURS
*/
package main

import "github.com/jacobarthurs/pgwalk/cmd"

func main() {
	cmd.Execute()
}
