package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	scope "github.com/paradox70/Precision-Audio-Scope"
)

func main() {
	// 1. 解析命令行参数
	recordAudio := flag.Bool("record", false, "Record audio to capture.wav")
	inputFile := flag.String("file", "", "Input wav file for replay testing")
	deviceName := flag.String("device", "", "Capture device name substring (default: system default)")
	csvFile := flag.String("csv", "", "Write per-cycle measurement rows to a CSV file")
	quiet := flag.Bool("quiet", false, "Disable waveform rendering, print readout lines only")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	logFile := flag.String("log", "", "Write diagnostics log to a file instead of stderr")
	flag.Parse()

	// 2. 初始化系统
	cfg := scope.DefaultConfig()
	cfg.Audio.DeviceName = *deviceName
	cfg.Display.Enabled = !*quiet
	cfg.Debug.Verbose = *verbose
	cfg.Debug.LogFile = *logFile

	system := scope.NewScopeSystem(cfg)
	if *inputFile != "" {
		system.SetReplayFile(*inputFile)
	}
	if *recordAudio {
		system.EnableRecording("capture.wav")
	}
	if *csvFile != "" {
		system.EnableCsvDebug(*csvFile)
	}

	// 3. 启动系统
	if err := system.Start(); err != nil {
		log.Fatalf("System start failed: %v", err)
	}
	defer system.Stop()

	// 4. 主循环 (处理信号和控制台输入)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 启动控制台输入监听
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			lower := strings.ToLower(input)
			if lower == "q" || lower == "exit" || lower == "quit" {
				sigChan <- os.Interrupt
				return
			}

			// 将输入传递给系统处理
			system.HandleCommand(input)
		}
	}()

	// 阻塞等待退出信号或回放结束
	select {
	case <-sigChan:
	case <-system.Done():
	}
	fmt.Println("\nShutting down...")
}
