package main

import "github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/cmd"

func main() {
	cmd.Execute()
}
