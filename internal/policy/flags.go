package policy

import (
	"strconv"

	"github.com/spf13/pflag"
)

var _ pflag.Value = (*StartTLSMode)(nil)

// Flags holds the command line counterparts of the policy options
type Flags struct {
	noUpdate bool
	onlyNew  bool
	force    bool
	noMail   bool

	mailFrom    string
	mailTo      string
	mailSubject string

	smtpHost     string
	smtpPort     int
	smtpUser     string
	smtpPassword string
	starttls     StartTLSMode
}

// BindFlags registers one flag per policy option on fs
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}

	fs.BoolVar(&f.noUpdate, KeyNoUpdate, false, "Do not update the package index")
	fs.BoolVar(&f.onlyNew, KeyOnlyNew, false, "Only list new package updates")
	fs.BoolVar(&f.noMail, KeyNoMail, false, "Do not send mail, just print to stdout")
	fs.BoolVar(&f.force, KeyForce, false, "Print something even if no packages are found so a mail is always sent")

	fs.StringVar(&f.mailFrom, KeyMailFrom, "", "The From: header used (default: root@<host>)")
	fs.StringVar(&f.mailTo, KeyMailTo, "", "The To: header used (default: root@<host>)")
	fs.StringVar(&f.mailSubject, KeyMailSubject, "", "The subject used")

	fs.StringVar(&f.smtpHost, KeySMTPHost, "", "The SMTP server to use (default: localhost)")
	fs.IntVar(&f.smtpPort, KeySMTPPort, 0, "The SMTP port to use (default: 25)")
	fs.StringVar(&f.smtpUser, KeySMTPUser, "", "The SMTP user to use (default: no user)")
	fs.StringVar(&f.smtpPassword, KeySMTPPassword, "", "The SMTP password to use (default: no password)")
	fs.Var(&f.starttls, KeySMTPStartTLS,
		`Whether to use STARTTLS: "yes" uses it if available, "force" fails if it is not (default: force)`)

	return f
}

// Overrides returns the options that were set on fs, which BindFlags
// registered them on. Flags the user did not give are absent, so they
// never mask config values.
func Overrides(fs *pflag.FlagSet) map[string]string {
	overrides := map[string]string{}

	for _, key := range Keys() {
		flag := fs.Lookup(key)
		if flag == nil || !flag.Changed {
			continue
		}

		value := flag.Value.String()
		if IsBool(key) {
			if b, err := strconv.ParseBool(value); err == nil && b {
				value = "yes"
			} else {
				value = "no"
			}
		}
		overrides[key] = value
	}

	return overrides
}
