package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"

	"atelier_back_end/internal/models"
)

// GenerateTrackingQR génère un QR de suivi de commande en base64 prêt à mettre dans <img src="...">
func GenerateTrackingQR(orderID string) (string, error) {
	trackingURL := fmt.Sprintf("%s/suivi?commande=%s", GetFrontendBaseURL(), orderID)

	png, err := qrcode.Encode(trackingURL, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// GenerateInvoicePDF charge la page facture du front et l'imprime en PDF.
// La page front attend l'identifiant de commande et le QR de suivi en query.
func GenerateInvoicePDF(order models.Order) ([]byte, error) {
	qrBase64, err := GenerateTrackingQR(order.OrderID)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("id", order.OrderID)
	q.Set("qr", qrBase64)
	fullURL := fmt.Sprintf("%s/facture?%s", GetFrontendBaseURL(), q.Encode())

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// timeout pour éviter de bloquer
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdfBuf []byte

	err = chromedp.Run(ctx,
		chromedp.Navigate(fullURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

// Helper: récupère l'URL du front depuis l'env
func GetFrontendBaseURL() string {
	u := os.Getenv("FRONTEND_BASE_URL")
	if u == "" {
		// fallback local dev
		return "http://localhost:3000"
	}
	return u
}
