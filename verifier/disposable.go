package verifier

import "strings"

var disposableDomains = loadDisposableDomains()

// isDisposableDomain reports whether the domain belongs to a throwaway
// mail service. Matches the registered domain too, so sub.yopmail.com
// counts.
func isDisposableDomain(domain string) bool {
	if disposableDomains[domain] {
		return true
	}
	if i := strings.Index(domain, "."); i > 0 {
		if disposableDomains[domain[i+1:]] {
			return true
		}
	}
	return false
}

func loadDisposableDomains() map[string]bool {
	domains := make(map[string]bool)
	for _, d := range strings.Split(disposableDomainList, "\n") {
		d = strings.TrimSpace(d)
		if d != "" {
			domains[d] = true
		}
	}
	return domains
}

const disposableDomainList = `
mailinator.com
mailinator2.com
notmailinator.com
tempmail.org
temp-mail.org
temp-mail.io
tempmailaddress.com
tempail.com
tempemail.net
tempinbox.com
tempomail.fr
temporaryinbox.com
mytemp.email
10minutemail.com
10minutemail.co.za
20minutemail.com
guerrillamail.com
guerrillamail.net
guerrillamail.org
guerrillamailblock.com
sharklasers.com
grr.la
yopmail.com
yopmail.fr
yopmail.net
maildrop.cc
mailnesia.com
mailcatch.com
mailmetrash.com
mintemail.com
dispostable.com
discard.email
fakeinbox.com
fake-mail.com
mail-temp.com
getairmail.com
getnada.com
nada.email
throwawaymail.com
trashmail.com
trashmail.net
trashmail.org
trashmail.me
trashmail.at
trashmail.de
trashmail.ws
trash-mail.at
trash-mail.com
trash-mail.de
trashymail.com
trashymail.net
trialmail.de
spamgourmet.com
spamhole.com
spam.la
spam4.me
spamspot.com
spambox.us
spamfree24.org
spamfree.eu
spamdecoy.net
spamcorptastic.com
spamday.com
spamherelots.com
spamhereplease.com
spamthis.co.uk
spamthisplease.com
suremail.info
thisisnotmyrealemail.com
thankyou2010.com
tyldd.com
wh4f.org
willselfdestruct.com
wronghead.com
www.e4ward.com
zippymail.info
zoemail.org
0-mail.com
0815.ru
0clickemail.com
0wnd.net
0wnd.org
123-m.com
1fsdfdsfsdf.tk
1pad.de
33mail.com
dropmail.me
emailondeck.com
mohmal.com
moakt.com
tmpmail.org
tmpmail.net
tmails.net
disbox.net
disbox.org
mailsac.com
inboxkitten.com
mail7.io
mailpoof.com
burnermail.io
spamok.com
mailslurp.com
tempr.email
discardmail.com
discardmail.de
mailexpire.com
mailforspam.com
mailfreeonline.com
mailimate.com
mailin8r.com
mailme.lv
mailmoat.com
mailnull.com
mailshell.com
mailsiphon.com
mailzilla.com
mbx.cc
mega.zik.dj
meinspamschutz.de
meltmail.com
messagebeamer.de
mierdamail.com
ministry-of-silly-walks.de
mjukglass.nu
mobi.web.id
moburl.com
moncourrier.fr.nf
monemail.fr.nf
monmail.fr.nf
msa.minsmail.com
mt2009.com
mx0.wwwnew.eu
mycleaninbox.net
mypartyclip.de
myphantomemail.com
myspaceinc.com
myspaceinc.net
mytrashmail.com
neomailbox.com
nepwk.com
nervmich.net
nervtmich.net
netmails.com
netmails.net
netzidiot.de
neverbox.com
no-spam.ws
nobulk.com
noclickemail.com
nogmailspam.info
nomail.xl.cx
nomail2me.com
nomorespamemails.com
nospam.ze.tc
nospam4.us
nospamfor.us
nospammail.net
notsharingmy.info
nowmymail.com
nurfuerspam.de
objectmail.com
obobbo.com
odnorazovoe.ru
oneoffemail.com
onewaymail.com
onlatedotcom.info
online.ms
opayq.com
ordinaryamerican.net
otherinbox.com
ovpn.to
owlpic.com
pancakemail.com
pcusers.otherinbox.com
pjjkp.com
plexolan.de
politikerclub.de
poofy.org
pookmail.com
privacy.net
privatdemail.net
proxymail.eu
prtnx.com
putthisinyourspamdatabase.com
quickinbox.com
rcpt.at
reallymymail.com
realtyalerts.ca
recode.me
recursor.net
reliable-mail.com
rhyta.com
rmqkr.net
rtrtr.com
s0ny.net
safe-mail.net
safersignup.de
safetymail.info
safetypost.de
sandelf.de
saynotospams.com
schafmail.de
schrott-email.de
secretemail.de
secure-mail.biz
senseless-entertainment.com
services391.com
sharedmailbox.org
shieldemail.com
shiftmail.com
shitmail.me
shitware.nl
shmeriously.com
shortmail.net
sibmail.com
sinnlos-mail.de
slapsfromlastnight.com
slaskpost.se
smashmail.de
smellfear.com
snakemail.com
sneakemail.com
snkmail.com
sofimail.com
solvemail.info
sogetthis.com
soodonims.com
spambog.com
spambog.de
spambog.ru
spamex.com
spamfighter.cf
spamfighter.ga
spamfighter.gq
spamfighter.ml
spamfighter.tk
spamgoes.in
spaminator.de
spamkill.info
spaml.com
spaml.de
spammotel.com
spamobox.com
spamslicer.com
spamstack.net
spamtroll.net
stuffmail.de
supergreatmail.com
supermailer.jp
superrito.com
superstachel.de
talkinator.com
teewars.org
teleworm.com
teleworm.us
temp-mail.ru
tempalias.com
tempe-mail.com
tempemail.biz
tempemail.com
tempmail.eu
tempmaildemo.com
tempmailer.com
tempmailer.de
tempthe.net
thanksnospam.info
throam.com
throwam.com
tilien.com
tittbit.in
tmailinator.com
toomail.biz
topranklist.de
tradermail.info
trash2009.com
trashdevil.com
trashemail.de
turual.com
twinmail.de
ubismail.net
upliftnow.com
uplipht.com
uroid.com
venompen.com
veryrealemail.com
viditag.com
viewcastmedia.com
viewcastmedia.net
viewcastmedia.org
vomoto.com
vubby.com
wasteland.rfc822.org
webemail.me
weg-werf-email.de
wegwerf-email-addressen.de
wegwerf-email.de
wegwerf-emails.de
wegwerfadresse.de
wegwerfemail.com
wegwerfemail.de
wegwerfmail.de
wegwerfmail.info
wegwerfmail.net
wegwerfmail.org
wetrainbayarea.com
wetrainbayarea.org
wuzup.net
wuzupmail.net
xagloo.com
xemaps.com
xents.com
xmaily.com
xoxy.net
yep.it
yogamaven.com
yuurok.com
zehnminuten.de
zehnminutenmail.de
zetmail.com
zoaxe.com
`
