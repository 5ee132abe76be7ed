package ecgxml

import "encoding/xml"

// CardiologyXML is the subset of the CardioSoft export that carries
// waveforms, their scaling, and the device's own beat findings.
type CardiologyXML struct {
	XMLName             xml.Name `xml:"CardiologyXML"`
	ObservationType     string   `xml:"ObservationType"` // RestECG
	ObservationDateTime struct {
		Hour   string `xml:"Hour"`
		Minute string `xml:"Minute"`
		Second string `xml:"Second"`
		Day    string `xml:"Day"`
		Month  string `xml:"Month"`
		Year   string `xml:"Year"`
	} `xml:"ObservationDateTime"`
	ClinicalInfo struct {
		DeviceInfo struct {
			Desc        string `xml:"Desc"`        // CardioSoft
			SoftwareVer string `xml:"SoftwareVer"` // V6.73
			AnalysisVer string `xml:"AnalysisVer"` // 12SL V21
		} `xml:"DeviceInfo"`
	} `xml:"ClinicalInfo"`
	PatientInfo struct {
		PID string `xml:"PID"`
	} `xml:"PatientInfo"`
	RestingECGMeasurements struct {
		DiagnosisVersion string    `xml:"DiagnosisVersion"`
		VentricularRate  unitValue `xml:"VentricularRate"` // 60 /min
		RRInterval       unitValue `xml:"RRInterval"`      // 996 ms
		QRSNum           string    `xml:"QRSNum"`          // 10
		MedianSamples    struct {
			NumberOfLeads           string       `xml:"NumberOfLeads"`
			SampleRate              unitValue    `xml:"SampleRate"` // 500 Hz
			ChannelSampleCountTotal string       `xml:"ChannelSampleCountTotal"`
			Resolution              unitValue    `xml:"Resolution"` // 5 uVperLsb
			WaveformData            []leadValues `xml:"WaveformData"`
		} `xml:"MedianSamples"`
	} `xml:"RestingECGMeasurements"`
	StripData struct {
		NumberOfLeads           string       `xml:"NumberOfLeads"`
		SampleRate              unitValue    `xml:"SampleRate"`
		ChannelSampleCountTotal string       `xml:"ChannelSampleCountTotal"` // 5000
		Resolution              unitValue    `xml:"Resolution"`
		WaveformData            []leadValues `xml:"WaveformData"`
		ArrhythmiaResults       struct {
			Time      []unitValue `xml:"Time"`      // 855 ms, 1840 ms, ...
			BeatClass []string    `xml:"BeatClass"` // dominant, ...
		} `xml:"ArrhythmiaResults"`
	} `xml:"StripData"`
}

type unitValue struct {
	Text  string `xml:",chardata"`
	Units string `xml:"units,attr"`
}

type leadValues struct {
	Text string `xml:",chardata"` // 0,0,-2,-3,0,7,9,5,...
	Lead string `xml:"lead,attr"`
}
