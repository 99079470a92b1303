package diagnosis

import "context"

// StubAnalyzer returns a canned assessment. It stands in for Gemini in
// development environments without an API key.
type StubAnalyzer struct{}

func NewStubAnalyzer() *StubAnalyzer { return &StubAnalyzer{} }

func (*StubAnalyzer) Analyze(_ context.Context, _ SessionInput) (*Assessment, error) {
	return &Assessment{
		Summary: "Berdasarkan analisis sesi konsultasi, teridentifikasi beberapa indikator stres dan kecemasan. " +
			"Pasien menunjukkan pola komunikasi yang mencerminkan beban mental yang cukup tinggi dengan gejala " +
			"yang konsisten dengan gangguan kecemasan ringan hingga sedang.",
		Recommendations: []string{
			"Praktikkan teknik pernapasan dalam dan meditasi mindfulness 10-15 menit setiap hari",
			"Atur jadwal tidur yang teratur dengan minimal 7-8 jam per malam",
			"Lakukan aktivitas fisik ringan seperti jalan kaki 30 menit setiap hari",
			"Batasi konsumsi kafein terutama di sore dan malam hari",
			"Pertimbangkan untuk melanjutkan konseling rutin 2 minggu sekali",
		},
		Severity: SeverityMedium,
		NextSteps: "Disarankan untuk melakukan follow-up konsultasi dalam 2 minggu untuk memonitor perkembangan. " +
			"Jika gejala memburuk atau muncul gejala baru seperti serangan panik atau insomnia berkepanjangan, " +
			"segera hubungi psikolog atau tenaga medis profesional.",
	}, nil
}
