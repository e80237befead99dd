package main

import (
	"os"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/internal/cli"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/embedded"
)

func main() {
	// 初始化嵌入资源，必须在任何流程配置加载之前
	embedded.Init(dataFS)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
