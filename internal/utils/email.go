package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"

	"atelier_back_end/internal/models"
)

func SendConfirmationEmail(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	if err := msg.From("noreply@atelier-boutique.fr"); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("facture_atelier.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f€</td>
				<td>%.2f€</td>
			</tr>`, item.Name, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h1>Merci pour votre commande !</h1>
	<p>Bonjour %s,</p>
	<p>Votre commande <strong>%s</strong> a bien été enregistrée.</p>
	<table border="1" cellpadding="8" cellspacing="0" style="border-collapse: collapse;">
		<tr><th>Article</th><th>Quantité</th><th>Prix</th><th>Sous-total</th></tr>
		%s
	</table>
	<p><strong>Total : %.2f€</strong></p>
	<p>Vous recevrez un e-mail dès l'expédition de votre colis.</p>
	<p>L'équipe Atelier</p>
</body>
</html>`, order.Customer.Name, order.OrderID, itemsHTML, order.Total)
}
