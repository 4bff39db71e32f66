package scope

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger 构建诊断日志器
// 日志输出到 stderr 或文件，stdout 留给波形界面
// 返回的 cleanup 在系统停止时调用，负责 flush 和关闭文件
func newLogger(verbose bool, logFile string) (*zap.SugaredLogger, func(), error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	var sink zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)
	closeFile := func() {}
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create log file: %v", err)
		}
		sink = zapcore.AddSync(f)
		closeFile = func() { _ = f.Close() }
	}

	logger := zap.New(zapcore.NewCore(encoder, sink, level))
	cleanup := func() {
		_ = logger.Sync()
		closeFile()
	}
	return logger.Sugar(), cleanup, nil
}
