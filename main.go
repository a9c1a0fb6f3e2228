package main

import (
	"flag"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	cf "github.com/blabu/prsiService/configuration"
	"github.com/blabu/prsiService/game"
	"github.com/blabu/prsiService/server"
	"github.com/blabu/prsiService/stat"
	"github.com/blabu/prsiService/store"

	lg "log"

	log "github.com/blabu/prsiService/logWrapper"
)

var confPath = flag.String("conf", "./config.yml", "Set path to config file")

var sigTerm chan os.Signal

func init() {
	flag.Parse()
	log.Infof("Try read configuration file %s\n", *confPath)
	if err := cf.ReadConfig(*confPath); err != nil {
		log.Fatal("Undefined Configuration file")
	}
	sigTerm = make(chan os.Signal, 1)
}

func initLogger() {
	if len(cf.Config.LogPath) != 0 {
		go log.GetLogger().ChangeFile(cf.Config.LogPath, time.Duration(cf.Config.SaveDuration)*time.Minute)
	}
	log.SetFlags(lg.Ldate | lg.Ltime | lg.Lshortfile)
}

// checkLocalAddr - the configured bind host must be an address of a local
// interface. An empty host and the wildcard addresses always pass.
func checkLocalAddr(hostport string) error {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return err
	}
	if host == "" || host == "0.0.0.0" || host == "::" || host == "localhost" {
		return nil
	}
	want := net.ParseIP(host)
	if want == nil {
		return &net.AddrError{Err: "not an IP address", Addr: host}
	}
	if want.IsLoopback() {
		return nil
	}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return err
	}
	for _, a := range addrs {
		if ipNet, ok := a.(*net.IPNet); ok && ipNet.IP.Equal(want) {
			return nil
		}
	}
	return &net.AddrError{Err: "not a local IP address", Addr: host}
}

func getTCPListener() net.Listener {
	port := cf.Config.ServerTCPPort
	if err := checkLocalAddr(port); err != nil {
		log.Fatalf("Refusing to bind %s: %v", port, err)
		return nil
	}
	listen, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("Can not run listener at port %s %v", port, err)
		return nil
	}
	log.Info("Start TCP server at ", port)
	return listen
}

func main() {
	signal.Notify(sigTerm, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	initLogger()
	rand.Seed(time.Now().UnixNano())

	db, err := store.Open(cf.Config.ResultStore)
	if err != nil {
		log.Fatalf("Can not open result store: %v", err)
	}
	defer db.Close()

	reg := game.NewRegistry(int(cf.Config.MaxPlayers), int(cf.Config.MaxSessions), db)
	monitor := game.NewMonitor(reg,
		cf.HeartbeatPeriodDuration(),
		cf.GracefulCheckDuration(),
		cf.GracefulTimeoutDuration(),
		int(cf.Config.MaxMissedHeartbeats),
		!cf.Config.DisableHeartbeat)
	monitor.Run()

	st := stat.CreateStatistics(time.Duration(cf.Config.OldIPAddrTimeout) * time.Minute)
	srv := server.NewGameServer(reg, st, cf.Config.MaxConnectionFromIP, int(cf.Config.MaxPacketSize)*1024)

	listener := getTCPListener()
	go srv.Serve(listener)

	<-sigTerm
	srv.Stop()
	monitor.Stop()
	listener.Close()
	log.Info("Operation system kill server ", string(st.GetJsonStat()))
}
