package analysis

var commonPorts = map[int]string{
	20:    "FTP-DATA",
	21:    "FTP",
	22:    "SSH",
	23:    "Telnet",
	25:    "SMTP",
	53:    "DNS",
	80:    "HTTP",
	110:   "POP3",
	143:   "IMAP",
	443:   "HTTPS",
	3306:  "MySQL",
	4444:  "Metasploit",
	5432:  "PostgreSQL",
	5555:  "ADB",
	6379:  "Redis",
	6666:  "IRC",
	8080:  "HTTP-Alt",
	31337: "Back Orifice",
}

// LookupService returns the well-known service name for a port.
func LookupService(port int) (string, bool) {
	name, ok := commonPorts[port]
	return name, ok
}
