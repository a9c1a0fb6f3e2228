package logWrapper

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/logger"
)

// LogFileType - wrapper over the logger with support for changing the
// backing file while the server runs
type LogFileType struct {
	file       *os.File
	logWrapper *logger.Logger
	mtx        sync.RWMutex
}

var log LogFileType

func init() {
	log.logWrapper = logger.Init("prsiService", true, false, os.Stdout)
}

// GetLogger - returns the default logger
func GetLogger() *LogFileType {
	return &log
}

// newFile - registers a new log file, closing the previous one
func (l *LogFileType) newFile(f *os.File) {
	if l.file != nil {
		l.logWrapper.Infof("Close old file %s", l.file.Name())
		if err := l.file.Close(); err != nil {
			l.logWrapper.Infof("Error when try close file %s", err.Error())
		}
	}
	l.file = f
}

// ChangeFile - periodically rotates the file the logs are written to.
// Runs until a log file can not be opened.
func (l *LogFileType) ChangeFile(addrPath string, dT time.Duration) {
	for {
		logFilePath := addrPath + "/log " + strings.Split(time.Now().Format("2006-01-02 15_04_05"), " ")[0] + ".txt"
		logFile, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			l.logWrapper.Errorf("Error when try open a file for loging %s, %s", logFilePath, err.Error())
			return
		}
		l.newFile(logFile)
		func(l *LogFileType, dT time.Duration) {
			l.mtx.Lock()
			l.logWrapper = logger.Init("prsiService", true, false, l.file)
			l.mtx.Unlock()
			defer l.logWrapper.Close()
			time.Sleep(dT)
		}(l, dT)
	}
}

/*
Standard logger functions
*/

func SetFlags(flags int) {
	logger.SetFlags(flags)
}

func Trace(v ...interface{}) {
	log.mtx.RLock()
	defer log.mtx.RUnlock()
	log.logWrapper.InfoDepth(1, v...)
}

func Tracef(format string, v ...interface{}) {
	log.mtx.RLock()
	defer log.mtx.RUnlock()
	log.logWrapper.InfoDepth(1, fmt.Sprintf(format, v...))
}

// Info uses the default logger and logs with the Info severity.
// Arguments are handled in the manner of fmt.Print.
func Info(v ...interface{}) {
	log.mtx.RLock()
	defer log.mtx.RUnlock()
	log.logWrapper.InfoDepth(1, v...)
}

// Infof uses the default logger and logs with the Info severity.
// Arguments are handled in the manner of fmt.Printf.
func Infof(format string, v ...interface{}) {
	log.mtx.RLock()
	defer log.mtx.RUnlock()
	log.logWrapper.InfoDepth(1, fmt.Sprintf(format, v...))
}

// Warning uses the default logger and logs with the Warning severity.
// Arguments are handled in the manner of fmt.Print.
func Warning(v ...interface{}) {
	log.mtx.RLock()
	defer log.mtx.RUnlock()
	log.logWrapper.WarningDepth(1, v...)
}

// Warningf uses the default logger and logs with the Warning severity.
// Arguments are handled in the manner of fmt.Printf.
func Warningf(format string, v ...interface{}) {
	log.mtx.RLock()
	defer log.mtx.RUnlock()
	log.logWrapper.WarningDepth(1, fmt.Sprintf(format, v...))
}

// Error uses the default logger and logs with the Error severity.
// Arguments are handled in the manner of fmt.Print.
func Error(v ...interface{}) {
	log.mtx.RLock()
	defer log.mtx.RUnlock()
	log.logWrapper.ErrorDepth(1, v...)
}

// Errorf uses the default logger and logs with the Error severity.
// Arguments are handled in the manner of fmt.Printf.
func Errorf(format string, v ...interface{}) {
	log.mtx.RLock()
	defer log.mtx.RUnlock()
	log.logWrapper.ErrorDepth(1, fmt.Sprintf(format, v...))
}

// Fatal uses the default logger, logs with the Fatal severity
// and ends with os.Exit(1).
func Fatal(v ...interface{}) {
	log.mtx.RLock()
	defer log.mtx.RUnlock()
	log.logWrapper.FatalDepth(1, v...)
}

// Fatalf uses the default logger, logs with the Fatal severity,
// and ends with os.Exit(1).
// Arguments are handled in the manner of fmt.Printf.
func Fatalf(format string, v ...interface{}) {
	log.mtx.RLock()
	defer log.mtx.RUnlock()
	log.logWrapper.FatalDepth(1, fmt.Sprintf(format, v...))
}
