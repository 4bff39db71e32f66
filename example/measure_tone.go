package main

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paradox70/Precision-Audio-Scope/Meter"
)

func main() {
	// 1. 创建默认配置的频率计 (48kHz, 2s 窗口, 1Hz-5kHz)
	cfg := Meter.DefaultMeterConfig()
	meter := Meter.NewFreqMeter(cfg)

	fmt.Println("Frequency meter demo: synthesizes a sine tone, then measures it.")
	fmt.Println("Enter a target frequency in Hz (e.g. 440).")
	fmt.Println("Type 'exit' or 'quit' to stop.")

	// 2. 循环读取控制台输入
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.ToLower(input) == "exit" || strings.ToLower(input) == "quit" {
			break
		}

		target, err := strconv.ParseFloat(input, 64)
		if err != nil || target < 0 {
			log.Printf("Invalid frequency: %q\n", input)
			continue
		}

		// 3. 合成一个完整窗口的正弦波并整块喂入
		n := int(cfg.WindowSec * cfg.SampleRate)
		block := make([]float32, n)
		for i := range block {
			block[i] = float32(math.Sin(2.0 * math.Pi * target * float64(i) / cfg.SampleRate))
		}
		meter.Ingest(block)

		// 4. 测量并打印结果
		res := meter.Estimate()
		if res.Valid {
			fmt.Printf("Measured: %.3f Hz (target %.3f Hz, edges %d/%d)\n",
				res.Freq, target, res.RisingEdges, res.FallingEdges)
		} else {
			fmt.Printf("No measurement: %s (edges %d/%d)\n",
				res.Reason, res.RisingEdges, res.FallingEdges)
		}
	}

	fmt.Println("Bye.")
}
