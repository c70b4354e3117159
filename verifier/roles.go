package verifier

import "strings"

var roleAccounts = loadRoleAccounts()

// isRoleAccount reports whether the local part addresses a function
// rather than a person. Role inboxes bounce and complain far more often,
// so they are flagged risky.
func isRoleAccount(localPart string) bool {
	if roleAccounts[localPart] {
		return true
	}
	// admin+tag@ and admin-fr@ style variants.
	for _, sep := range []byte{'+', '-', '.'} {
		if i := strings.IndexByte(localPart, sep); i > 0 && roleAccounts[localPart[:i]] {
			return true
		}
	}
	return false
}

func loadRoleAccounts() map[string]bool {
	accounts := make(map[string]bool)
	for _, a := range strings.Split(roleAccountList, "\n") {
		a = strings.TrimSpace(a)
		if a != "" {
			accounts[a] = true
		}
	}
	return accounts
}

const roleAccountList = `
abuse
accounting
accounts
admin
administrator
alerts
all
billing
careers
contact
customercare
customerservice
dev
developer
devops
enquiries
enquiry
everyone
feedback
finance
ftp
hello
help
helpdesk
hostmaster
hr
info
inquiries
invoice
invoices
it
jobs
legal
list
mail
mailer-daemon
marketing
media
newsletter
no-reply
nobody
noc
noreply
notification
notifications
office
operations
orders
payments
postmaster
press
privacy
purchasing
recruiting
recruitment
root
sales
security
service
services
shop
spam
staff
subscribe
support
sysadmin
team
tech
test
unsubscribe
usenet
uucp
webmaster
www
`
